package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"marketnotify/internal/adapter/api"
	"marketnotify/internal/adapter/api/handler"
	apimiddleware "marketnotify/internal/adapter/api/middleware"
	"marketnotify/internal/adapter/api/router"
	"marketnotify/internal/adapter/repository"
	"marketnotify/internal/infrastructure/identity"
	"marketnotify/internal/infrastructure/provider"
	"marketnotify/internal/infrastructure/storage"
	"marketnotify/internal/infrastructure/websocket"
	"marketnotify/internal/usecase"
	"marketnotify/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirestoreProject)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	// Dev-token verification is only enabled outside production;
	// in production every token goes through the user service.
	devSecret := ""
	if cfg.Environment == "development" {
		devSecret = cfg.JWTSecret
	}
	identityClient := identity.NewClient(cfg.UserServiceURL, time.Duration(cfg.UserServiceTimeout)*time.Second, devSecret)

	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)

	wsManager := websocket.NewManager()

	providers := []provider.Provider{
		provider.NewEmailProvider(),
		provider.NewPushProvider(),
	}

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, wsManager, providers)
	chatUseCase := usecase.NewChatUseCase(chatRepo, wsManager, notificationUseCase)

	handler.SetupDevTokenHandler(devSecret)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(identityClient)

	chatHandler := handler.NewChatHandler(chatUseCase, storageClient, cfg.MaxImageSize)
	notificationHandler := handler.NewNotificationHandler(notificationUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, identityClient, chatUseCase, notificationUseCase)

	router.Setup(e, chatHandler, notificationHandler, wsHandler, authMiddleware)
	router.SetupDevRouter(e, cfg.Environment)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
