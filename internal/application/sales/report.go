package sales

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

const (
	defaultReportPageSize = 15
	maxReportPageSize     = 100
)

// ReportUseCase consultas de lectura sobre ventas completadas: listado con
// cursor estable y métricas agregadas del rango.
type ReportUseCase struct {
	saleRepo repository.SaleRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(saleRepo repository.SaleRepository) *ReportUseCase {
	return &ReportUseCase{saleRepo: saleRepo}
}

// GetSalesReport devuelve una página de ventas completed en [start, end],
// opcionalmente filtradas por SKU, en orden (sale_date DESC, id DESC) con
// desempate por id para que el cursor sea estable. NextCursor viene vacío en
// la última página.
func (uc *ReportUseCase) GetSalesReport(
	ctx context.Context,
	companyID string,
	start, end time.Time,
	sku *string,
	pageSize int,
	cursor string,
) (*dto.SalesReportResponse, error) {
	if pageSize <= 0 {
		pageSize = defaultReportPageSize
	}
	if pageSize > maxReportPageSize {
		pageSize = maxReportPageSize
	}

	after, err := decodeReportCursor(cursor)
	if err != nil {
		return nil, err
	}

	filter := repository.ReportFilter{CompanyID: companyID, Start: start, End: end, SKU: sku}

	// Se pide una fila extra para saber si existe página siguiente.
	rows, err := uc.saleRepo.GetSalesReport(ctx, filter, after, pageSize+1)
	if err != nil {
		return nil, err
	}

	resp := &dto.SalesReportResponse{Data: make([]dto.SaleResponse, 0, len(rows))}
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for _, sale := range rows {
		resp.Data = append(resp.Data, toSaleResponse(sale, nil))
	}
	if hasMore {
		last := rows[len(rows)-1]
		resp.NextCursor = encodeReportCursor(repository.ReportCursorKey{
			SaleDate: last.SaleDate,
			ID:       last.ID,
		})
	}
	return resp, nil
}

// GetSalesMetrics devuelve las métricas agregadas del mismo conjunto filtrado.
// Con filtro por SKU, total_quantity cuenta solo las líneas de ese SKU mientras
// total_amount/total_profit siguen reflejando la venta completa.
func (uc *ReportUseCase) GetSalesMetrics(
	ctx context.Context,
	companyID string,
	start, end time.Time,
	sku *string,
) (*dto.SalesMetricsDTO, error) {
	row, err := uc.saleRepo.GetSalesMetrics(ctx, repository.ReportFilter{
		CompanyID: companyID,
		Start:     start,
		End:       end,
		SKU:       sku,
	})
	if err != nil {
		return nil, err
	}
	return &dto.SalesMetricsDTO{
		TotalSales:    row.TotalSales,
		TotalAmount:   row.TotalAmount,
		TotalProfit:   row.TotalProfit,
		TotalQuantity: row.TotalQuantity,
	}, nil
}
