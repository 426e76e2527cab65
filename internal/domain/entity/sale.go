package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. pending es el estado inicial; completed y failed
// son terminales para una instancia de venta.
const (
	SaleStatusPending    = "pending"
	SaleStatusProcessing = "processing"
	SaleStatusCompleted  = "completed"
	SaleStatusFailed     = "failed"
)

// Sale es la cabecera de una venta. Los totales son sumas derivadas de sus
// líneas. Tras la creación, solo el pipeline de liquidación cambia el estado.
type Sale struct {
	ID          string
	CompanyID   string
	SaleNumber  string  // SALE-YYYYMMDD-NNNNN, único por día por empresa (best effort)
	TrackingID  *string // correlación para el caller asíncrono; NULL en ventas síncronas
	TotalAmount decimal.Decimal
	TotalCost   decimal.Decimal
	TotalProfit decimal.Decimal
	Status      string
	SaleDate    time.Time
	CompletedAt *time.Time // solo al pasar a completed
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTerminal indica si el estado ya no admite transiciones.
func (s *Sale) IsTerminal() bool {
	return s.Status == SaleStatusCompleted || s.Status == SaleStatusFailed
}
