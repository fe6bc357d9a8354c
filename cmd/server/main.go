package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/router"
	"github.com/zahin-dev/comment-hub/backend/internal/validators"
	"github.com/zahin-dev/comment-hub/backend/pkg/config"
	"github.com/zahin-dev/comment-hub/backend/pkg/firebase"
	"github.com/zahin-dev/comment-hub/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase")
	}
	log.Info().Msg("Firebase app, auth and database clients initialized.")

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	snapshot := router.SetupRoutes(e, cfg, firebaseApp, log)

	// Validator
	e.Validator = validators.NewValidator()

	// Keep the snapshot caches warm; the admin SDK has no realtime
	// listeners, so polling stands in for subscriptions.
	go snapshot.Poll(ctx, 15*time.Second, log)

	// Start server
	log.Fatal().Err(e.Start(":" + cfg.Port)).Msg("server stopped")
}
