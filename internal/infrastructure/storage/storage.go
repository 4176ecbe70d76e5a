// Package storage abre el backend de persistencia elegido en la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/pasteops-api/internal/domain/repository"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/memory"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pasteops-api/pkg/config"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

// Backend repositorios en autocommit más el ejecutor de transacciones.
type Backend struct {
	Kind     string
	Repos    repository.Repos
	TxRunner repository.TxRunner
	ping     func(ctx context.Context) error
	close    func()
}

// Open conecta el backend. Con postgres aplica las migraciones pendientes.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("STORE=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &Backend{
			Kind:     config.StoreMemory,
			Repos:    store.Repos(),
			TxRunner: store,
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
		return &Backend{
			Kind:     config.StorePostgres,
			Repos:    postgres.NewRepos(pool),
			TxRunner: postgres.NewTxRunner(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("STORE %q no soportado", cfg.Store)
}

// Ping verifica que el backend responde.
func (b *Backend) Ping(ctx context.Context) error { return b.ping(ctx) }

// Close libera las conexiones.
func (b *Backend) Close() { b.close() }
