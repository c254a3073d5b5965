package server

import (
	"fmt"
	"net/http"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/database"
	custommiddleware "shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"
	"shop-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Database
	redis  *redis.Client
}

// NewRouter builds the HTTP handler tree. redisClient may be nil, in which
// case the credential endpoints are not rate limited.
func NewRouter(cfg *config.Config, logger *zap.Logger, db *database.Database, redisClient *redis.Client) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, !cfg.Server.IsProduction()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		if health["status"] != "up" {
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "unavailable",
				"database": health,
			})
			return
		}

		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"database": health,
		})
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	userService := service.NewUserService(userRepo, tokens)
	adminService := service.NewAdminService(db)

	authn := custommiddleware.NewAuthenticator(tokens, logger)

	var limiter func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled && redisClient != nil {
		limiter = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rl:auth",
		}, logger)
	}

	// Register routes
	transport.NewAuthHandler(userService, logger).RegisterRoutes(router, authn, limiter)
	transport.NewProductHandler(productRepo, categoryRepo, logger).RegisterRoutes(router, authn)
	transport.NewAdminHandler(userRepo, productRepo, adminService, logger).RegisterRoutes(router, authn, cfg.Admin.Usernames)

	return router
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Database, redisClient *redis.Client) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, db, redisClient),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
