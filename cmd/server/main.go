package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/app"
	"github.com/dharmasatrya/fareradar/internal/config"
	"github.com/dharmasatrya/fareradar/internal/handler"
	"github.com/dharmasatrya/fareradar/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := cfg.Logger()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger(logger))
	e.Use(handler.Metrics())

	handler.Register(e,
		handler.NewSearchHandler(application.Service),
		handler.NewRouteHandler(application.Service, application.Store),
	)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting fareradar server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}
