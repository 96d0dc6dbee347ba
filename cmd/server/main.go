package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/config"
	"pdf-presenter/internal/db"
	"pdf-presenter/internal/handlers"
	"pdf-presenter/internal/pdf"
	"pdf-presenter/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(config.ParseLogLevel(cfg.LogLevel, logrus.InfoLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.InitDatabase(cfg.DBPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	// Initialize services
	recentStore := services.NewRecentStore(database, logger)
	wsService := services.NewWebSocketService(logger, services.RelayOptions{
		MaxMessageSize: cfg.Relay.MaxMessageBytes(),
		Rate:           cfg.Relay.Rate,
		Burst:          cfg.Relay.Burst,
	})
	go wsService.Run(ctx)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(wsService, logger)
	staticHandler := handlers.NewStaticHandler(cfg.Server.StaticDir)
	healthHandler := handlers.NewHealthHandler(wsService, logger)
	resolveHandler := handlers.NewResolveHandler(pdf.NewPDFCPU(logger), cfg.Relay.MaxMessageBytes(), logger)
	recentHandler := handlers.NewRecentHandler(recentStore, logger)

	// Setup routes
	router := handlers.SetupRoutes(wsHandler, staticHandler, healthHandler, resolveHandler, recentHandler)

	// Configure server
	server := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Server shutdown incomplete")
		}
	}()

	// Configure TLS if enabled
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{
			MinVersion: getTLSVersion(cfg.TLS.MinVersion),
		}

		logger.WithFields(logrus.Fields{
			"addr":        server.Addr,
			"cert":        cfg.TLS.CertFile,
			"key":         cfg.TLS.KeyFile,
			"min_version": cfg.TLS.MinVersion,
		}).Info("Starting HTTPS server")

		err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	} else {
		logger.WithField("addr", server.Addr).Info("Starting HTTP server")
		logger.Warn("HTTP mode is not recommended for production")

		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Server failed")
	}
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
