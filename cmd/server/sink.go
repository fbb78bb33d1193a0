package main

import (
	"context"
	"fmt"
	"log/slog"

	"gatepass/internal/logsink"
	pgsink "gatepass/internal/logsink/postgres"
	"gatepass/internal/logsink/sheets"
	sqlitesink "gatepass/internal/logsink/sqlite"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/database"
	"gatepass/internal/platform/health"
)

// backend is the raw log store selected by SINK_DRIVER, before tracing and
// retries are layered on.
type backend struct {
	sink   logsink.Sink
	close  func() error
	checks map[string]health.CheckFunc
}

func openBackend(ctx context.Context, cfg config.Sink, log *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverSheets:
		s, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:     cfg.SpreadsheetID,
			CredentialsBase64: cfg.CredentialsBase64,
			CredentialsFile:   cfg.CredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("open sheets sink: %w", err)
		}
		return &backend{sink: s, close: noClose}, nil

	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("open postgres sink: %w", err)
		}
		return &backend{
			sink:   pgsink.New(pool.DB()),
			close:  pool.Close,
			checks: map[string]health.CheckFunc{"database": pool.Health},
		}, nil

	case config.DriverSQLite:
		pool, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite sink: %w", err)
		}
		return &backend{
			sink:   sqlitesink.New(pool.DB()),
			close:  pool.Close,
			checks: map[string]health.CheckFunc{"database": pool.Health},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory log sink")
		return &backend{sink: logsink.NewMemory(), close: noClose}, nil
	}
	return nil, fmt.Errorf("unknown sink driver %q", cfg.Driver)
}

func noClose() error { return nil }
