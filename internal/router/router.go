package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/newswire/backend/internal/auth"
	"github.com/newswire/backend/internal/broadcast"
	"github.com/newswire/backend/internal/handlers"
	"github.com/newswire/backend/internal/middleware"
	"github.com/newswire/backend/internal/models"
	"github.com/newswire/backend/internal/repositories"
	"github.com/newswire/backend/internal/storage"
	"github.com/newswire/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.BodyLimit(cfg.BodyLimit))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client) error {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		return err
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize dependencies ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	articleRepo := repositories.NewMongoArticleRepository(mgClient.Database("newswire"))
	tokenIssuer := auth.NewTokenIssuer(cfg.JWTSecret)
	hub := broadcast.NewHub()

	uploads, err := storage.NewUploadStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	// Uploaded assets are served statically
	e.Static("/uploads", uploads.Dir())

	// --- Realtime notification channel ---
	wsHandler := broadcast.NewWSHandler(hub)
	wsHandler.RegisterRoutes(e)
	log.Println("Websocket notification channel configured.")

	// --- Unprotected routes ---
	authHandler := handlers.NewAuthHandler(userRepo, tokenIssuer)
	authGroup := e.Group("/api/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	articleHandler := handlers.NewArticleHandler(articleRepo, userRepo, hub, uploads)
	publicAPI := e.Group("/api")
	articleHandler.RegisterPublicRoutes(publicAPI)
	log.Println("Public routes configured.")

	// --- Protected routes (require a valid session token) ---
	protectedAuth := e.Group("/api/auth")
	protectedAuth.Use(middleware.JWTAuthMiddleware(tokenIssuer))
	authHandler.RegisterProfileRoutes(protectedAuth)

	protectedAPI := e.Group("/api")
	protectedAPI.Use(middleware.JWTAuthMiddleware(tokenIssuer))
	articleHandler.RegisterProtectedRoutes(protectedAPI)
	log.Println("Protected routes configured.")

	log.Println("All routes configured.")
	return nil
}
