package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promolift/adapters/dataset"
	"promolift/adapters/excel"
	"promolift/internal/analysis"
	"promolift/internal/config"
	"promolift/internal/metrics"
	"promolift/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	appConfig.ConfigureLogging()
	gin.SetMode(appConfig.Server.GinMode)

	log := logrus.WithField("component", "main")

	m := metrics.New(prometheus.NewRegistry())
	reader := excel.NewDataReader(excel.ConfigFrom(appConfig.Data))
	provider := dataset.NewProvider(reader).WithMetrics(m)
	analyzer := analysis.NewAnalyzer(provider).WithMetrics(m)

	// Warm the cache; a failure here is retried on the first request
	go func() {
		if _, err := provider.Table(context.Background()); err != nil {
			log.WithError(err).Warn("initial dataset load failed")
		}
	}()

	app, err := ui.NewApp(analyzer, ui.Options{
		AllowedOrigins: appConfig.Server.AllowedOrigins,
		Metrics:        m.Handler(),
	})
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appConfig.Data.Watch {
		watcher, err := dataset.NewWatcher(appConfig.Data.Path, dataset.DefaultDebounce, provider.Invalidate)
		if err != nil {
			log.WithError(err).Warn("dataset reload on change disabled")
		} else {
			go func() {
				if err := watcher.Run(ctx); err != nil {
					log.WithError(err).Warn("dataset watcher stopped")
				}
			}()
		}
	}

	go func() {
		log.Infof("Dashboard listening on http://localhost:%s (dataset %s)", appConfig.Server.Port, appConfig.Data.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
