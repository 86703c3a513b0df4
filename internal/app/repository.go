package app

import (
	"context"
	"fmt"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
	"remotebalkan-scraper/internal/storage/mssql"
	"remotebalkan-scraper/internal/storage/postgres"
	"remotebalkan-scraper/internal/storage/postgrest"
)

// OpenRepository connects the sink named by storage.driver.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	timeout := cfg.GetCommandTimeout()
	logger = logger.With("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverPostgREST:
		repo, err := postgrest.NewRepository(cfg.Storage.URL, cfg.Storage.ServiceKey, timeout, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverPostgres:
		repo, err := postgres.NewRepository(ctx, cfg.Storage.DSN, timeout, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMSSQL:
		repo, err := mssql.NewRepository(cfg.Storage.DSN, timeout, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
