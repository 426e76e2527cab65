package sales

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de ventas e inventario atados a esa tx. La liquidación depende
// de que cambios de estado y salidas de inventario confirmen o reviertan juntos.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// SettlementQueue cola de liquidación con entrega at-least-once y reintentos
// acotados. Devuelve el tracking id con el que el caller asíncrono puede
// consultar el estado final de la venta.
type SettlementQueue interface {
	// EnqueueSettle encola la liquidación de una venta ya creada (camino síncrono).
	EnqueueSettle(saleID string) string
	// EnqueueCreate encola la creación y liquidación completas (camino asíncrono).
	EnqueueCreate(companyID string, in dto.CreateSaleRequest) string
}
