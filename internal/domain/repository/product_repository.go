package repository

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
// El core no crea ni edita productos; solo Deactivate (archivo de obsoletos)
// muta el flag is_active.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Product, error)
	Deactivate(ctx context.Context, productID string) error
}
