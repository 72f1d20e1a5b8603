package main

import (
	"context"
	"fmt"
	"net/http"

	"propdesk/internal/archive"
	"propdesk/internal/assist"
	"propdesk/internal/blob"
	"propdesk/internal/config"
	"propdesk/internal/core"
	"propdesk/internal/infra/logging"
	"propdesk/internal/infra/metrics"
	"propdesk/internal/seed"
	"propdesk/pkg/domain"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      config.Config
	logger   *logging.Zap
	metrics  *metrics.Prometheus
	store    domain.PersistentStore
	svc      *core.Service
	archiver *archive.Archiver
	assist   assist.Suggester
}

// fileStore is implemented by stores kept in a local database file. A file
// that already held a snapshot is never reseeded, even when it is empty.
type fileStore interface {
	Path() string
	Loaded() bool
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	store, err := core.OpenPersistentStore(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	prom := metrics.New()
	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(prom),
		core.WithAuditRecorder(core.LoggerAuditRecorder{Logger: logger.With("component", "audit")}),
		core.WithRulesEngine(core.NewDefaultRulesEngine(cfg.StrictTheory)),
	)
	prom.TrackSnapshot(svc.Snapshot)

	a := &app{cfg: cfg, logger: logger, metrics: prom, store: store, svc: svc}
	restored := false
	if f, ok := store.(fileStore); ok {
		restored = f.Loaded()
		logger.Info("opened database file", "path", f.Path(), "restored", restored, "records", svc.Snapshot().Total())
	}
	if cfg.Seed && !restored {
		seeded, err := seed.IfEmpty(ctx, svc)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		if seeded {
			logger.Info("seeded sample dataset", "records", svc.Snapshot().Total())
		}
	}

	blobs, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open %s blob store: %w", cfg.Blob.Driver, err)
	}
	a.archiver = archive.New(blobs, svc, archive.WithLogger(logger.With("component", "archive")))

	if cfg.Assist.APIKey == "" {
		a.assist = assist.Disabled{}
	} else {
		a.assist = assist.NewGeminiClient(assist.Config{
			APIKey:  cfg.Assist.APIKey,
			Model:   cfg.Assist.Model,
			BaseURL: cfg.Assist.BaseURL,
			Logger:  logger.With("component", "assist"),
		}, assist.WithHTTPClient(&http.Client{Timeout: cfg.Assist.Timeout}))
	}
	return a, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close() error {
	err := a.store.Close()
	// Sync fails on terminals with ENOTTY; nothing useful to report.
	_ = a.logger.Sync()
	return err
}
