package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, company_id, sale_number, tracking_id, total_amount, total_cost, total_profit, status, sale_date, completed_at, notes, created_at, updated_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.CompanyID, &s.SaleNumber, &s.TrackingID,
		&s.TotalAmount, &s.TotalCost, &s.TotalProfit, &s.Status,
		&s.SaleDate, &s.CompletedAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	return &s, nil
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CompanyID, sale.SaleNumber, sale.TrackingID,
		sale.TotalAmount, sale.TotalCost, sale.TotalProfit, sale.Status,
		sale.SaleDate, sale.CompletedAt, sale.Notes, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sale number %s ya existe: %w", sale.SaleNumber, err)
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, unit_cost, subtotal, cost_total, profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SaleID, item.ProductID, item.Quantity,
		item.UnitPrice, item.UnitCost, item.Subtotal, item.CostTotal, item.Profit,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// UpdateTotals fija los totales derivados de las líneas.
func (r *SaleRepo) UpdateTotals(ctx context.Context, saleID string, amount, cost, profit decimal.Decimal) error {
	query := `
		UPDATE sales
		SET total_amount = $2, total_cost = $3, total_profit = $4, updated_at = NOW()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, saleID, amount, cost, profit); err != nil {
		return fmt.Errorf("update sale totals: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID. Devuelve nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return scanSale(r.q.QueryRow(ctx, query, id))
}

// GetByTrackingID obtiene la venta creada con ese tracking id (camino asíncrono).
func (r *SaleRepo) GetByTrackingID(ctx context.Context, trackingID string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE tracking_id = $1`
	return scanSale(r.q.QueryRow(ctx, query, trackingID))
}

// GetForUpdate bloquea la fila de la venta hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	return scanSale(r.q.QueryRow(ctx, query, id))
}

// GetItems devuelve las líneas de la venta.
func (r *SaleRepo) GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, unit_cost, subtotal, cost_total, profit
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	var list []*entity.SaleItem
	for rows.Next() {
		var item entity.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.UnitCost, &item.Subtotal, &item.CostTotal, &item.Profit); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la venta; completedAt solo viene al pasar a completed.
func (r *SaleRepo) UpdateStatus(ctx context.Context, saleID, status string, completedAt *time.Time) error {
	query := `
		UPDATE sales
		SET status = $2, completed_at = COALESCE($3, completed_at), updated_at = NOW()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, saleID, status, completedAt); err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	return nil
}

// GetSalesReport devuelve una página keyset de ventas completed del rango,
// orden (sale_date DESC, id DESC). Con filtro por SKU entran solo las ventas
// con al menos una línea de ese SKU.
func (r *SaleRepo) GetSalesReport(ctx context.Context, f repository.ReportFilter, after *repository.ReportCursorKey, limit int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales s
		WHERE s.company_id = $1 AND s.status = 'completed'
		  AND s.sale_date >= $2 AND s.sale_date <= $3`
	args := []any{f.CompanyID, f.Start, f.End}
	pos := 4

	if f.SKU != nil {
		query += fmt.Sprintf(`
		  AND EXISTS (
		      SELECT 1 FROM sale_items si
		      JOIN products p ON p.id = si.product_id
		      WHERE si.sale_id = s.id AND p.sku = $%d
		  )`, pos)
		args = append(args, *f.SKU)
		pos++
	}
	if after != nil {
		query += fmt.Sprintf(" AND (s.sale_date, s.id) < ($%d, $%d)", pos, pos+1)
		args = append(args, after.SaleDate, after.ID)
		pos += 2
	}
	query += fmt.Sprintf(" ORDER BY s.sale_date DESC, s.id DESC LIMIT $%d", pos)
	args = append(args, limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.SaleNumber, &s.TrackingID,
			&s.TotalAmount, &s.TotalCost, &s.TotalProfit, &s.Status,
			&s.SaleDate, &s.CompletedAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// GetSalesMetrics agrega las ventas que cumplen el filtro. total_quantity cuenta
// solo las líneas del SKU filtrado; amount y profit son de las ventas completas.
func (r *SaleRepo) GetSalesMetrics(ctx context.Context, f repository.ReportFilter) (repository.SalesMetricsRow, error) {
	var (
		query string
		args  []any
	)
	if f.SKU == nil {
		query = `
			WITH filtered AS (
			    SELECT s.id, s.total_amount, s.total_profit
			    FROM sales s
			    WHERE s.company_id = $1 AND s.status = 'completed'
			      AND s.sale_date >= $2 AND s.sale_date <= $3
			)
			SELECT COUNT(*)::bigint,
			       COALESCE(SUM(f.total_amount), 0),
			       COALESCE(SUM(f.total_profit), 0),
			       COALESCE((
			           SELECT SUM(si.quantity)
			           FROM sale_items si
			           JOIN filtered f2 ON f2.id = si.sale_id
			       ), 0)::bigint
			FROM filtered f`
		args = []any{f.CompanyID, f.Start, f.End}
	} else {
		query = `
			WITH filtered AS (
			    SELECT s.id, s.total_amount, s.total_profit
			    FROM sales s
			    WHERE s.company_id = $1 AND s.status = 'completed'
			      AND s.sale_date >= $2 AND s.sale_date <= $3
			      AND EXISTS (
			          SELECT 1 FROM sale_items si
			          JOIN products p ON p.id = si.product_id
			          WHERE si.sale_id = s.id AND p.sku = $4
			      )
			)
			SELECT COUNT(*)::bigint,
			       COALESCE(SUM(f.total_amount), 0),
			       COALESCE(SUM(f.total_profit), 0),
			       COALESCE((
			           SELECT SUM(si.quantity)
			           FROM sale_items si
			           JOIN filtered f2 ON f2.id = si.sale_id
			           JOIN products p ON p.id = si.product_id
			           WHERE p.sku = $4
			       ), 0)::bigint
			FROM filtered f`
		args = []any{f.CompanyID, f.Start, f.End, *f.SKU}
	}

	var row repository.SalesMetricsRow
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&row.TotalSales, &row.TotalAmount, &row.TotalProfit, &row.TotalQuantity,
	)
	if err != nil {
		return repository.SalesMetricsRow{}, fmt.Errorf("sales metrics: %w", err)
	}
	return row, nil
}
