package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/konkalaitzidis/digital-health-app/internal/inference"
	"github.com/konkalaitzidis/digital-health-app/internal/model"
)

// Run loads the model artifact, wires the HTTP routes and serves until the
// context is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	artifact, err := model.LoadArtifact(config.Model.ArtifactPath)
	if err != nil {
		return fmt.Errorf("loading model artifact: %w", err)
	}

	engine, err := inference.New(artifact)
	if err != nil {
		return fmt.Errorf("creating inference engine: %w", err)
	}

	logger.Info("model artifact loaded",
		slog.Group("model",
			slog.String("path", config.Model.ArtifactPath),
			slog.String("version", artifact.Version),
			slog.Int("windowLength", engine.WindowLength()),
			slog.Any("classes", engine.Classes()),
		))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	h := newHandler(engine, logger)
	router.GET("/ping", h.Ping)
	router.POST("/predict", h.Predict)

	server := &http.Server{
		Addr:         config.Server.Addr,
		Handler:      router,
		ReadTimeout:  config.Server.RequestTimeout,
		WriteTimeout: config.Server.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", config.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		return fmt.Errorf("serving: %w", err)

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
