package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

// RedisStatusCache cache compartido entre nodos sobre Redis. Todas las
// operaciones son best-effort: un Redis caído degrada a leer siempre de la BD,
// nunca a un error para el caller.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ inventory.StatusCache = (*RedisStatusCache)(nil)

// NewRedisStatusCache construye el cache sobre un cliente ya conectado.
func NewRedisStatusCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisStatusCache {
	return &RedisStatusCache{client: client, ttl: ttl, log: log}
}

func (c *RedisStatusCache) Get(ctx context.Context, companyID string) ([]dto.InventoryStatusDTO, bool) {
	raw, err := c.client.Get(ctx, statusKey(companyID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("company_id", companyID).Msg("cache get falló")
		}
		return nil, false
	}
	var snapshot []dto.InventoryStatusDTO
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.log.Warn().Err(err).Str("company_id", companyID).Msg("cache con payload corrupto")
		return nil, false
	}
	return snapshot, true
}

func (c *RedisStatusCache) Set(ctx context.Context, companyID string, snapshot []dto.InventoryStatusDTO) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKey(companyID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("company_id", companyID).Msg("cache set falló")
	}
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, companyID string) {
	if err := c.client.Del(ctx, statusKey(companyID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("company_id", companyID).Msg("cache invalidate falló")
	}
}
