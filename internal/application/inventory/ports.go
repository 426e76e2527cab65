package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el libro de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StatusCache cache best-effort del snapshot de estado de inventario, con TTL
// corto y clave por empresa. La invalidación es una llamada explícita de los
// escritores del libro; una lectura desactualizada dentro del TTL es aceptable.
type StatusCache interface {
	Get(ctx context.Context, companyID string) ([]dto.InventoryStatusDTO, bool)
	Set(ctx context.Context, companyID string, snapshot []dto.InventoryStatusDTO)
	Invalidate(ctx context.Context, companyID string)
}
