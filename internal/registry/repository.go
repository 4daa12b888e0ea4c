package registry

import (
	"context"
	"fmt"
	"log/slog"

	"farewatch/internal/config"
	"farewatch/internal/model"
)

// Registry defines the source of journeys to check.
type Registry interface {
	LoadJourneys(ctx context.Context) ([]model.Journey, error)
}

// New creates the registry selected by cfg.Registry.Driver. The returned
// function releases the registry's resources.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (Registry, func(), error) {
	switch cfg.Registry.Driver {
	case "file":
		return NewFileRegistry(cfg.Registry.Path, logger), func() {}, nil
	case "postgres":
		repo, err := NewPostgresRegistry(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		if cfg.Registry.Migrate {
			if err := repo.EnsureSchema(ctx); err != nil {
				repo.Close()
				return nil, nil, err
			}
			logger.Info("PostgresRegistry: schema ensured")
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown registry driver %q", config.ErrInvalidConfig, cfg.Registry.Driver)
	}
}
