package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ventas/pkg/clock"
)

const testCompanyID = "00000000-0000-0000-0000-00000000000a"

func testSnapshot() []dto.InventoryStatusDTO {
	return []dto.InventoryStatusDTO{{ProductID: "p1", SKU: "SKU-1", CurrentStock: 10}}
}

func TestMemoryCache_GetDespuesDeSet(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	c := cache.NewMemoryStatusCache(5*time.Minute, clock.NowFunc(func() time.Time { return now }))

	_, ok := c.Get(context.Background(), testCompanyID)
	assert.False(t, ok, "cache vacío no devuelve snapshot")

	c.Set(context.Background(), testCompanyID, testSnapshot())

	got, ok := c.Get(context.Background(), testCompanyID)
	require.True(t, ok)
	assert.Equal(t, testSnapshot(), got)
}

func TestMemoryCache_ExpiraPorTTL(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	c := cache.NewMemoryStatusCache(5*time.Minute, clock.NowFunc(func() time.Time { return now }))

	c.Set(context.Background(), testCompanyID, testSnapshot())

	now = now.Add(4 * time.Minute)
	_, ok := c.Get(context.Background(), testCompanyID)
	assert.True(t, ok, "dentro del TTL el snapshot sigue vivo")

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(context.Background(), testCompanyID)
	assert.False(t, ok, "pasado el TTL el snapshot expira")
}

func TestMemoryCache_Invalidate(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	c := cache.NewMemoryStatusCache(5*time.Minute, clock.NowFunc(func() time.Time { return now }))

	c.Set(context.Background(), testCompanyID, testSnapshot())
	c.Invalidate(context.Background(), testCompanyID)

	_, ok := c.Get(context.Background(), testCompanyID)
	assert.False(t, ok)
}

func TestMemoryCache_ClavesPorEmpresa(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	c := cache.NewMemoryStatusCache(5*time.Minute, clock.NowFunc(func() time.Time { return now }))

	c.Set(context.Background(), "empresa-a", testSnapshot())
	c.Invalidate(context.Background(), "empresa-b")

	_, ok := c.Get(context.Background(), "empresa-a")
	assert.True(t, ok, "invalidar otra empresa no toca este snapshot")
}
