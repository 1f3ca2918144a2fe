package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/postgres"
)

// Dependencies содержит хранилища приложения и их общий жизненный цикл.
type Dependencies struct {
	Products domain.ProductRepository
	Orders   domain.OrderRepository
	Outbox   domain.OutboxRepository

	// Store не nil только при postgres-хранилище.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies выбирает хранилище по конфигурации: postgres при заданном
// DatabaseURL, иначе in-memory.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory storage")
		return &Dependencies{
			Products: memory.NewProductRepository(),
			Orders:   memory.NewOrderRepository(),
			Outbox:   memory.NewOutboxRepository(),
			Logger:   logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres storage: %w", err)
	}

	if cfg.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	logger.Info("using postgres storage")
	return &Dependencies{
		Products: postgres.NewProductRepository(store),
		Orders:   postgres.NewOrderRepository(store),
		Outbox:   postgres.NewOutboxRepository(store),
		Store:    store,
		Logger:   logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
