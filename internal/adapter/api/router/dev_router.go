package router

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/adapter/api/handler"
)

func SetupDevRouter(e *echo.Echo, environment string) {
	if environment != "development" {
		return
	}
	devTokenHandler := handler.GetDevTokenHandler()

	e.GET("/_dev/token", devTokenHandler.GenerateToken)
}
