package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterEntryRequest body para POST /api/inventory/entries.
type RegisterEntryRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Notes     string          `json:"notes,omitempty"`
}

// MovementResponse representación de un movimiento del libro de inventario.
type MovementResponse struct {
	ID        string           `json:"id"`
	CompanyID string           `json:"company_id"`
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"`
	Quantity  int64            `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	SaleID    *string          `json:"sale_id,omitempty"`
	EntryDate time.Time        `json:"entry_date"`
	Notes     string           `json:"notes,omitempty"`
}

// InventoryStatusDTO estado de inventario de un producto activo.
// TotalValue es el costo bruto de las entradas (sin ajuste FIFO de lo restante);
// ProjectedProfit = stock * (precio_venta - costo).
type InventoryStatusDTO struct {
	ProductID       string          `json:"product_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	CurrentStock    int64           `json:"current_stock"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ProjectedProfit decimal.Decimal `json:"projected_profit"`
}

// StaleProductDTO producto sin movimientos recientes.
type StaleProductDTO struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
}
