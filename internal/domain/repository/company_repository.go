package repository

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// CompanyRepository define el puerto de lectura de empresas (tenants).
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	ListActive(ctx context.Context) ([]*entity.Company, error)
}
