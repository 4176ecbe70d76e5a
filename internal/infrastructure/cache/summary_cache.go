// Package cache guarda en Redis el resumen de existencias. El libro lo invalida
// después de cada movimiento confirmado.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

const summaryKey = "pasteops:stock:summary"

var (
	_ inventory.SummaryCache = (*SummaryCache)(nil)
	_ ledger.Observer        = (*SummaryCache)(nil)
)

// New crea el cliente Redis y verifica la conexión.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// SummaryCache resumen de existencias con TTL.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSummaryCache construye el caché. ttl <= 0 usa un minuto.
func NewSummaryCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SummaryCache{client: client, ttl: ttl, log: log.Component("summary_cache")}
}

// GetSummary devuelve el resumen guardado. Cualquier error cuenta como fallo de caché.
func (c *SummaryCache) GetSummary(ctx context.Context) ([]dto.StockSummaryItem, bool) {
	raw, err := c.client.Get(ctx, summaryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("leer resumen de caché")
		}
		return nil, false
	}
	var items []dto.StockSummaryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn().Err(err).Msg("resumen en caché corrupto")
		return nil, false
	}
	return items, true
}

func (c *SummaryCache) SetSummary(ctx context.Context, items []dto.StockSummaryItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("guardar resumen en caché")
	}
}

// Invalidate borra el resumen guardado.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, summaryKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("invalidar resumen")
	}
}

// Committed invalida el resumen: cualquier movimiento cambia existencias.
func (c *SummaryCache) Committed(ctx context.Context, _ []*entity.StockMovement) {
	c.Invalidate(ctx)
}

func (c *SummaryCache) Rejected(context.Context, *domain.InsufficientStockError) {}
