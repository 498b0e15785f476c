// Command storage-api runs the multi-tenant file storage HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"github.com/storagesystem/api/auth"
	"github.com/storagesystem/api/config"
	"github.com/storagesystem/api/server"
	"github.com/storagesystem/api/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	generateKeys := pflag.Bool("generate-keys", false, "generate a key pair at the configured paths if none exists, then start")
	pflag.Parse()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	configureLogger(log, cfg)

	if *generateKeys {
		if _, err := os.Stat(cfg.PrivateKeyPath); errors.Is(err, os.ErrNotExist) {
			if _, err := auth.GenerateAndPersist(cfg.PublicKeyPath, cfg.PrivateKeyPath); err != nil {
				log.Fatalf("could not generate key pair: %v", err)
			}
			log.WithField("public", cfg.PublicKeyPath).Info("generated new key pair")
		}
	}

	service, err := auth.NewService(auth.Config{
		Issuer:         cfg.Issuer,
		PublicKeyPath:  cfg.PublicKeyPath,
		PrivateKeyPath: cfg.PrivateKeyPath,
	},
		auth.WithLogger(auth.NewLogrusLogger(log)),
		auth.WithMetrics(auth.NewPrometheusMetrics()),
		auth.WithTracer(auth.NewOpenTelemetryTracer(otel.Tracer("storage-api"))),
	)
	if err != nil {
		log.Fatalf("could not build authentication service: %v", err)
	}

	blobs, err := storage.NewBlobStore(cfg.StorageRoot)
	if err != nil {
		log.Fatalf("could not open blob store at %s: %v", cfg.StorageRoot, err)
	}

	srv := server.New(server.Deps{
		Auth:        service,
		Users:       storage.NewMemoryUserRepository(),
		Buckets:     storage.NewMemoryBucketRepository(),
		Directories: storage.NewMemoryDirectoryRepository(),
		Files:       storage.NewMemoryFileRepository(),
		Blobs:       blobs,
		Logger:      auth.NewLogrusLogger(log),
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("storage API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, staying at info", cfg.LogLevel)
		return
	}
	log.SetLevel(level)
}
