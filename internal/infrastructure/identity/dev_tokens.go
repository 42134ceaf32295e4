package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"marketnotify/pkg/errors"
)

type devClaims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateDevToken mints a locally signed token for development and testing,
// so the service can run without the user service being up.
func GenerateDevToken(secret, userID, username, role string, ttl time.Duration) (string, error) {
	claims := devClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func verifyDevToken(tokenString, secret string) (*Identity, error) {
	claims := &devClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Unauthorized("Invalid development token", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.Unauthorized("Invalid development token", nil)
	}

	return &Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
