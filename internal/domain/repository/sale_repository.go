package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReportCursorKey posición de keyset pagination: la última (sale_date, id) vista.
// La página siguiente devuelve filas estrictamente menores en orden
// (sale_date DESC, id DESC).
type ReportCursorKey struct {
	SaleDate time.Time
	ID       string
}

// ReportFilter filtro común de reporte y métricas de ventas: ventas completed
// de la empresa con sale_date dentro de [Start, End], opcionalmente restringidas
// a las que contienen al menos una línea cuyo producto tiene el SKU dado.
type ReportFilter struct {
	CompanyID string
	Start     time.Time
	End       time.Time
	SKU       *string
}

// SalesMetricsRow métricas agregadas sobre las ventas que cumplen el filtro.
// Con filtro por SKU, TotalQuantity cuenta solo las líneas de ese SKU mientras
// TotalAmount/TotalProfit siguen siendo de la venta completa (asimetría
// deliberada del filtro).
type SalesMetricsRow struct {
	TotalSales    int64
	TotalAmount   decimal.Decimal
	TotalProfit   decimal.Decimal
	TotalQuantity int64
}

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	UpdateTotals(ctx context.Context, saleID string, amount, cost, profit decimal.Decimal) error

	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*entity.Sale, error)
	GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)

	// GetForUpdate bloquea la fila de la venta (SELECT FOR UPDATE) para que dos
	// liquidaciones de la misma venta no se intercalen.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)

	// UpdateStatus cambia el estado; completedAt solo se setea al pasar a completed.
	UpdateStatus(ctx context.Context, saleID, status string, completedAt *time.Time) error

	// GetSalesReport devuelve una página keyset de ventas completed, orden
	// sale_date DESC, id DESC. after == nil pide la primera página.
	GetSalesReport(ctx context.Context, f ReportFilter, after *ReportCursorKey, limit int) ([]*entity.Sale, error)

	GetSalesMetrics(ctx context.Context, f ReportFilter) (SalesMetricsRow, error)
}
