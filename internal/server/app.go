// Package server wires the casegraph process: the database and its
// repositories, the graph store, the provider adapters and the enrichment
// dispatcher.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/casegraph/internal/cryptox"
	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/server/archive"
	"github.com/dmitrijs2005/casegraph/internal/server/auth"
	"github.com/dmitrijs2005/casegraph/internal/server/config"
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment/providers"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/casegraph/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

// newS3Archiver is a seam for tests.
var newS3Archiver = func(ctx context.Context, cfg archive.S3Config) (archive.Archiver, error) {
	return archive.NewS3Archiver(ctx, cfg)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	graph       *services.GraphService
	dispatcher  *enrichment.Dispatcher
	registry    *prometheus.Registry
}

// NewApp opens the database and builds every component from c. The caller
// must Close the App.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	var box *cryptox.SecretBox
	if c.VaultPassphrase != "" {
		b, err := cryptox.NewSecretBox(c.VaultPassphrase, c.VaultSalt)
		if err != nil {
			return nil, fmt.Errorf("vault init error: %w", err)
		}
		box = b
	} else {
		logger.Warn(ctx, "vault passphrase not set, provider credentials are unavailable")
	}

	graph := services.NewGraphService(db, rm, box, logger)

	arch := archive.NewNop()
	if c.S3Bucket != "" {
		s3, err := newS3Archiver(ctx, archive.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		arch = s3
	}

	registry := prometheus.NewRegistry()
	metrics := enrichment.NewMetrics(registry)

	adapters := providers.NewRegistry(providers.Deps{
		Graph:        graph,
		Vault:        graph,
		Archive:      arch,
		Client:       &http.Client{Timeout: c.ProviderTimeout},
		Logger:       logger,
		Endpoints:    c.ProviderEndpoints,
		PollAttempts: c.PollAttempts,
		PollInterval: c.PollInterval,
	})

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		graph:       graph,
		dispatcher:  enrichment.NewDispatcher(adapters, graph, metrics, logger),
		registry:    registry,
	}, nil
}

// Migrate brings the schema up to date.
func (app *App) Migrate(ctx context.Context) error {
	app.logger.Info(ctx, "Running migrations...", "driver", app.config.DatabaseDriver)
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	return nil
}

func (app *App) Graph() *services.GraphService      { return app.graph }
func (app *App) Dispatcher() *enrichment.Dispatcher { return app.dispatcher }
func (app *App) Metrics() prometheus.Gatherer       { return app.registry }
func (app *App) Logger() logging.Logger             { return app.logger }

// WriteMetrics writes the enrichment metrics to the configured textfile in
// Prometheus text format, for pickup by the node_exporter textfile
// collector. It does nothing when no textfile is configured.
func (app *App) WriteMetrics() error {
	path := app.config.MetricsTextfile
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, app.registry); err != nil {
		return fmt.Errorf("metrics export error: %w", err)
	}
	return nil
}

// IssueToken mints an owner token valid for the configured duration.
func (app *App) IssueToken(owner string) (string, error) {
	return auth.GenerateToken(owner, []byte(app.config.SecretKey), app.config.TokenValidityDuration)
}

// Owner resolves the owner identity carried by token.
func (app *App) Owner(token string) (string, error) {
	return auth.OwnerFromToken(token, []byte(app.config.SecretKey))
}

// Close releases the database.
func (app *App) Close() error {
	return app.db.Close()
}
