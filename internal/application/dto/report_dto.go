package dto

import "github.com/shopspring/decimal"

// SalesReportResponse página de ventas completed más el cursor de la siguiente
// página ("" cuando no hay más filas).
type SalesReportResponse struct {
	Data       []SaleResponse `json:"data"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// SalesMetricsDTO métricas agregadas del rango consultado.
type SalesMetricsDTO struct {
	TotalSales    int64           `json:"total_sales"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	TotalQuantity int64           `json:"total_quantity"`
}
