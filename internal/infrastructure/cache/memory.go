package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/pkg/clock"
)

// statusKey clave por empresa del snapshot de inventario.
func statusKey(companyID string) string {
	return fmt.Sprintf("inventory_status_%s", companyID)
}

type memoryEntry struct {
	snapshot  []dto.InventoryStatusDTO
	expiresAt time.Time
}

// MemoryStatusCache cache en proceso con TTL, para despliegues de un solo nodo
// o tests. La expiración es perezosa: se resuelve en el Get.
type MemoryStatusCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   clock.Clock
}

var _ inventory.StatusCache = (*MemoryStatusCache)(nil)

// NewMemoryStatusCache construye el cache con el TTL dado.
func NewMemoryStatusCache(ttl time.Duration, clk clock.Clock) *MemoryStatusCache {
	return &MemoryStatusCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   clk,
	}
}

func (c *MemoryStatusCache) Get(_ context.Context, companyID string) ([]dto.InventoryStatusDTO, bool) {
	c.mu.RLock()
	entry, ok := c.entries[statusKey(companyID)]
	c.mu.RUnlock()
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.snapshot, true
}

func (c *MemoryStatusCache) Set(_ context.Context, companyID string, snapshot []dto.InventoryStatusDTO) {
	c.mu.Lock()
	c.entries[statusKey(companyID)] = memoryEntry{
		snapshot:  snapshot,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *MemoryStatusCache) Invalidate(_ context.Context, companyID string) {
	c.mu.Lock()
	delete(c.entries, statusKey(companyID))
	c.mu.Unlock()
}
