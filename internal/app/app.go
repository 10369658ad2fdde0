// Package app initializes and holds the long-lived application
// services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/seqcenter/annoserve/internal/api"
	"github.com/seqcenter/annoserve/internal/config"
	"github.com/seqcenter/annoserve/internal/job"
	"github.com/seqcenter/annoserve/internal/storage"
	"github.com/seqcenter/annoserve/internal/workflow"
)

// App holds the shared, long-lived services. It is initialized once at
// startup and fails fast if any critical collaborator cannot be
// reached.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *job.Registry
	service  *job.Service
	server   *api.Server
}

// New builds the full service graph from configuration. The workflow
// engine must be reachable: New performs the registry's initial fetch
// and returns an error when it fails, so a process that comes up is
// known to hold a populated job map.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger.Info("initializing application services")

	engine := workflow.NewClient(workflow.Config{
		URL:       cfg.Engine.URL,
		Token:     cfg.Engine.Token,
		Namespace: cfg.Engine.Namespace,
		Timeout:   cfg.EngineTimeout(),
	})

	signer, err := storage.NewSigner(ctx, storage.Config{
		Endpoint:       cfg.S3.Endpoint,
		AccessKey:      cfg.S3.AccessKey,
		SecretKey:      cfg.S3.SecretKey,
		Bucket:         cfg.S3.Bucket,
		Region:         cfg.S3.Region,
		ForcePathStyle: cfg.S3.ForcePathStyle,
		UploadExpiry:   cfg.UploadExpiry(),
		DownloadExpiry: cfg.DownloadExpiry(),
	})
	if err != nil {
		return nil, fmt.Errorf("initialize storage signer: %w", err)
	}

	registry := job.NewRegistry(engine, cfg.PollInterval(), logger.Named("registry"))
	if err := registry.Start(ctx); err != nil {
		return nil, fmt.Errorf("start job registry: %w", err)
	}

	version := job.Version{
		Tool:    cfg.Versions.Tool,
		DB:      cfg.Versions.DB,
		Backend: cfg.Versions.Backend,
	}
	service := job.NewService(registry, engine, signer, version, logger.Named("job"))
	server := api.NewServer(service, logger.Named("api"))

	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		service:  service,
		server:   server,
	}, nil
}

// Handler returns the HTTP handler for the service's API.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Service exposes the job lifecycle service.
func (a *App) Service() *job.Service {
	return a.service
}
