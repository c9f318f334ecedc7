package main

import (
	"AssetKeeper/internal/config"
	"AssetKeeper/internal/envelope"
	"AssetKeeper/internal/handlers"
	"AssetKeeper/internal/metrics"
	"AssetKeeper/internal/middleware"
	"AssetKeeper/internal/repo"
	"AssetKeeper/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	// секрет проверяется до открытия БД и сокета
	decryptor, err := envelope.NewDecryptor(cfg.AESSecretKey)
	if err != nil {
		sugar.Fatalw("invalid AES_SECRET_KEY", "error", err)
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	metrics.RegisterMetrics()

	userRepo := repo.NewUserRepository(gormDB)
	assetRepo := repo.NewAssetRepository(gormDB)
	userService := service.NewUserService(userRepo)
	assetService := service.NewAssetService(assetRepo, decryptor, sugar, cfg.DecryptTimeout)

	h := handlers.NewHandler(userService, assetService, sugar, cfg)

	addr := cfg.BaseURL
	srv := &http.Server{Addr: addr, Handler: h.Router}

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"AssetMaxSizeMB", cfg.AssetMaxSizeMB,
		"DecryptTimeout", cfg.DecryptTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
