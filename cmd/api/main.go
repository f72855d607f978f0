package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"garrafinha/internal/adapter/api"
	"garrafinha/internal/adapter/api/handler"
	apimiddleware "garrafinha/internal/adapter/api/middleware"
	"garrafinha/internal/adapter/api/router"
	"garrafinha/internal/adapter/repository"
	"garrafinha/internal/domain/service"
	"garrafinha/internal/infrastructure/firebase"
	"garrafinha/internal/infrastructure/location"
	"garrafinha/internal/infrastructure/ratelimit"
	"garrafinha/internal/infrastructure/websocket"
	"garrafinha/internal/usecase"
	"garrafinha/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Try to get service account from environment variable (for production)
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		// Fallback to file path (for local development)
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	bottleRepo := repository.NewFirestoreBottleRepository(firestoreClient)
	entitlementRepo := repository.NewFirestoreEntitlementRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	locations := location.NewDirectory()
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	sessions := usecase.NewUnlockSessionManager(cfg.UnlockDuration)
	billingService := service.NewSimulatedBillingService(cfg.UnlockProductID, cfg.DestroyProductID)

	unlockUseCase := usecase.NewUnlockUseCase(entitlementRepo, billingService, sessions, locations, cfg.UnlockProductID)
	bottleUseCase := usecase.NewBottleUseCase(bottleRepo, sessions, locations, rateLimiter, billingService, cfg.DestroyProductID, cfg.MessageTTL)
	chatUseCase := usecase.NewChatUseCase(bottleRepo, rateLimiter, wsManager)

	handler.Setup(bottleUseCase, unlockUseCase, locations)
	handler.SetupHealthHandler(firebaseAuthClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)

	chatHandler := handler.NewChatHandler(chatUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, firebaseAuthClient, chatUseCase)

	router.Setup(e, authMiddleware)
	router.SetupChatRouter(e, chatHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
