package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de una empresa.
// El motor de inventario y ventas lo trata como solo lectura: el catálogo
// (creación, edición de precios, activación) se administra fuera del core.
type Product struct {
	ID        string
	CompanyID string
	SKU       string // código único por empresa
	Name      string
	CostPrice decimal.Decimal // costo unitario (2 decimales)
	SalePrice decimal.Decimal // precio de venta (2 decimales)
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
