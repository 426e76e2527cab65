package entity

import "github.com/shopspring/decimal"

// SaleItem es una línea de venta. unit_price y unit_cost son snapshots del
// producto al momento de crear la venta: cambios de precio posteriores no
// afectan ventas ya registradas. Inmutable tras la creación.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64 // siempre > 0
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	Subtotal  decimal.Decimal // quantity * unit_price
	CostTotal decimal.Decimal // quantity * unit_cost
	Profit    decimal.Decimal // subtotal - cost_total
}
