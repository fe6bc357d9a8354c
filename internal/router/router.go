package router

import (
	"strings"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/zahin-dev/comment-hub/backend/internal/handlers"
	"github.com/zahin-dev/comment-hub/backend/internal/middleware"
	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
	"github.com/zahin-dev/comment-hub/backend/internal/store"
	"github.com/zahin-dev/comment-hub/backend/internal/uploads"
	"github.com/zahin-dev/comment-hub/backend/pkg/config"
	"github.com/zahin-dev/comment-hub/backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies.
// The snapshot cache is returned so main can run the background poll loop.
func SetupRoutes(e *echo.Echo, cfg *config.Config, fb *firebase.App, logger zerolog.Logger) *store.Snapshot {
	// --- Initialize repositories ---
	commentRepo := repositories.NewFirebaseCommentRepository(fb.DBClient)
	userRepo := repositories.NewFirebaseUserRepository(fb.DBClient)
	banRepo := repositories.NewFirebaseBanRepository(fb.DBClient)
	pinRepo := repositories.NewFirebasePinRepository(fb.DBClient)

	policy := moderation.Policy{AllowPeerAction: cfg.ModerationAllowPeerAction}
	engine := moderation.NewEngine(commentRepo, userRepo, banRepo, pinRepo, policy, logger)
	snapshot := store.New(commentRepo, userRepo, pinRepo)
	uploader := uploads.NewClient(cfg.UploadSignEndpoint, cfg.UploadPublicBase, cfg.UploadFolder)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Backend config endpoint, gated outside development
	configHandler := handlers.NewConfigHandler(cfg)
	gate := middleware.ConfigGate(middleware.GateConfig{
		Development:    cfg.IsDevelopment(),
		AllowedIPs:     cfg.AllowedIPs,
		RefererPrefix:  cfg.AllowedRefererPrefix,
		ClientIDHeader: cfg.ClientIDHeader,
		ClientIDValue:  cfg.ClientIDValue,
	})
	e.GET("/api/firebase-config", configHandler.GetFirebaseConfig, gate)
	logger.Info().Msg("Config gateway routes configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, engine, fb.AuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	logger.Info().Msg("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	threadHandler := handlers.NewThreadHandler(snapshot)
	threadHandler.RegisterThreadRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, engine)
	commentHandler.RegisterCommentRoutes(api)

	moderationHandler := handlers.NewModerationHandler(engine)
	moderationHandler.RegisterModerationRoutes(api)

	profileHandler := handlers.NewProfileHandler(userRepo, engine, fb.AuthClient)
	profileHandler.RegisterProfileRoutes(api)

	uploadHandler := handlers.NewUploadHandler(uploader)
	uploadHandler.RegisterUploadRoutes(api)
	logger.Info().Msg("API routes configured.")

	// Static SPA shell for everything else
	e.Use(eMiddleware.StaticWithConfig(eMiddleware.StaticConfig{
		Root:  cfg.StaticDir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/") || path == "/health"
		},
	}))
	logger.Info().Msg("All routes configured.")

	return snapshot
}
