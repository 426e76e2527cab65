package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemInput una línea del carrito: producto y cantidad.
type SaleItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CreateSaleRequest body para POST /api/sales (síncrono) y /api/sales/async.
type CreateSaleRequest struct {
	Items []SaleItemInput `json:"items"`
	Notes string          `json:"notes,omitempty"`
}

// SaleItemResponse línea de venta con sus splits financieros.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CostTotal decimal.Decimal `json:"cost_total"`
	Profit    decimal.Decimal `json:"profit"`
}

// SaleResponse venta con cabecera y líneas.
type SaleResponse struct {
	ID          string             `json:"id"`
	CompanyID   string             `json:"company_id"`
	SaleNumber  string             `json:"sale_number"`
	TrackingID  *string            `json:"tracking_id,omitempty"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	TotalCost   decimal.Decimal    `json:"total_cost"`
	TotalProfit decimal.Decimal    `json:"total_profit"`
	Status      string             `json:"status"`
	SaleDate    time.Time          `json:"sale_date"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Items       []SaleItemResponse `json:"items,omitempty"`
}

// EnqueueSaleResponse respuesta del camino asíncrono: el caller debe consultar
// el estado de la venta con el tracking id.
type EnqueueSaleResponse struct {
	TrackingID string `json:"tracking_id"`
	Message    string `json:"message"`
}
