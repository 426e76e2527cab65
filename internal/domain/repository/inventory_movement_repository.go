package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryStatusRow resultado crudo de la consulta de estado de inventario.
// Lo produce la DB; el use case calcula la utilidad proyectada y lo convierte en DTO.
type InventoryStatusRow struct {
	ProductID    string
	SKU          string
	Name         string
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
	CurrentStock int64
	// TotalValue suma quantity*unit_cost de los movimientos entry (costo bruto
	// de lo ingresado, sin ajuste FIFO de lo que queda).
	TotalValue decimal.Decimal
}

// InventoryMovementRepository define el puerto de persistencia del libro de inventario.
// El libro es append-only: no hay Update ni Delete.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error)

	// CurrentStock devuelve la suma con signo de los movimientos del producto (0 si no hay filas).
	CurrentStock(ctx context.Context, productID string) (int64, error)

	// LockProduct serializa check+write de salidas contra el mismo producto
	// (pg_advisory_xact_lock). Solo tiene efecto dentro de una transacción.
	LockProduct(ctx context.Context, productID string) error

	// CountBySale cuenta los exits que referencian una venta (guarda defensiva
	// contra doble liquidación).
	CountBySale(ctx context.Context, saleID string) (int64, error)

	// InventoryStatus agrega stock y valorización por producto activo de la empresa.
	InventoryStatus(ctx context.Context, companyID string) ([]InventoryStatusRow, error)

	// StaleProducts devuelve los productos de la empresa sin movimientos desde
	// cutoff (incluye los que nunca han tenido movimientos).
	StaleProducts(ctx context.Context, companyID string, cutoff time.Time) ([]*entity.Product, error)
}
