package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/vidshare-backend/internal/api/handlers"
	"github.com/dom/vidshare-backend/internal/api/middleware"
	"github.com/dom/vidshare-backend/internal/api/response"
	"github.com/dom/vidshare-backend/internal/config"
	"github.com/dom/vidshare-backend/internal/logging"
	"github.com/dom/vidshare-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	httpLogger := logging.WithComponent(logger, "http")
	userHandler := handlers.NewUserHandler(
		services.Account,
		services.Session,
		handlers.CookieSettings{
			Secure:     true,
			AccessTTL:  cfg.AccessTokenExpiry,
			RefreshTTL: cfg.RefreshTokenExpiry,
		},
		handlers.UploadSettings{
			Dir:      cfg.UploadDir,
			MaxBytes: cfg.MaxUploadBytes,
		},
		httpLogger,
	)
	channelHandler := handlers.NewChannelHandler(services.Channel, httpLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/refresh-token", userHandler.RefreshToken)

			r.With(middleware.OptionalAuth(services.Session)).Get("/c/{username}", channelHandler.GetChannelProfile)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Session, httpLogger))
				r.Post("/logout", userHandler.Logout)
				r.Post("/change-password", userHandler.ChangePassword)
				r.Get("/current-user", userHandler.CurrentUser)
				r.Patch("/update-account", userHandler.UpdateAccount)
				r.Patch("/avatar", userHandler.UpdateAvatar)
				r.Patch("/cover-image", userHandler.UpdateCoverImage)
				r.Get("/history", channelHandler.GetWatchHistory)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found")
	})

	return r
}
