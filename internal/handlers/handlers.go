package handlers

import (
	"AssetKeeper/internal/config"
	"AssetKeeper/internal/middleware"
	"AssetKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	assetService *service.AssetService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithLogging)

	// promhttp сжимает ответ сам, поэтому /metrics — вне WithGzip
	r.Handle("/metrics", promhttp.Handler())

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	assetHandler := NewAssetHandler(assetService, logger, config)

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithGzip)
		r.Use(middleware.WithAuth(config.AuthSecret))

		// User routes
		r.Post("/api/user/register", userHandler.Register)
		r.Post("/api/user/login", userHandler.Login)
		r.Post("/api/user/test", userHandler.Status)

		// Расшифровка блобов, переданных в теле запроса (auth)
		r.Post("/api/decrypt/text", assetHandler.DecryptText)
		r.Post("/api/decrypt/buffer", assetHandler.DecryptBuffer)
		r.Post("/api/decrypt/batch", assetHandler.DecryptBatch)

		// Assets
		r.Post("/api/assets/upload", assetHandler.Upload)
		r.Get("/api/assets", assetHandler.List)
		r.Get("/api/assets/{name}/sealed", assetHandler.Sealed)
		r.Get("/api/assets/{name}", assetHandler.Open)
	})

	return &Handler{Router: r}
}
