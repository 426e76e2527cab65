package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay UPDATE ni DELETE sobre movimientos.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, company_id, product_id, type, quantity, unit_cost, sale_id, entry_date, notes, created_at`

// Create persiste un movimiento del libro.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.CompanyID, movement.ProductID, movement.Type,
		movement.Quantity, movement.UnitCost, movement.SaleID,
		movement.EntryDate, movement.Notes, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil, nil si no existe.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	var m entity.InventoryMovement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.Quantity,
		&m.UnitCost, &m.SaleID, &m.EntryDate, &m.Notes, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE product_id = $1
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.Quantity,
			&m.UnitCost, &m.SaleID, &m.EntryDate, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CurrentStock deriva el stock del producto como suma con signo del libro.
func (r *InventoryMovementRepo) CurrentStock(ctx context.Context, productID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'entry' THEN quantity ELSE -quantity END), 0)::bigint
		FROM inventory_movements
		WHERE product_id = $1`
	var stock int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&stock); err != nil {
		return 0, fmt.Errorf("current stock: %w", err)
	}
	return stock, nil
}

// LockProduct toma un advisory lock transaccional sobre el producto para
// serializar check+write de salidas concurrentes. El stock es una suma derivada
// sin fila propia, así que no hay nada que bloquear con FOR UPDATE; el lock se
// libera solo al terminar la transacción.
func (r *InventoryMovementRepo) LockProduct(ctx context.Context, productID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	if _, err := r.q.Exec(ctx, query, productID); err != nil {
		return fmt.Errorf("lock product: %w", err)
	}
	return nil
}

// CountBySale cuenta las salidas que referencian la venta.
func (r *InventoryMovementRepo) CountBySale(ctx context.Context, saleID string) (int64, error) {
	query := `SELECT COUNT(*) FROM inventory_movements WHERE sale_id = $1 AND type = 'exit'`
	var n int64
	if err := r.q.QueryRow(ctx, query, saleID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count by sale: %w", err)
	}
	return n, nil
}

// InventoryStatus agrega stock y valorización por producto activo de la empresa.
// total_value suma quantity*unit_cost de las entradas (costo bruto de lo
// ingresado); los movimientos históricos con unit_cost NULL aportan cero.
func (r *InventoryMovementRepo) InventoryStatus(ctx context.Context, companyID string) ([]repository.InventoryStatusRow, error) {
	query := `
		SELECT p.id, p.sku, p.name, p.cost_price, p.sale_price,
		       COALESCE(SUM(CASE WHEN m.type = 'entry' THEN m.quantity
		                         WHEN m.type = 'exit' THEN -m.quantity END), 0)::bigint AS current_stock,
		       COALESCE(SUM(CASE WHEN m.type = 'entry' THEN m.quantity * m.unit_cost END), 0) AS total_value
		FROM products p
		LEFT JOIN inventory_movements m ON m.product_id = p.id
		WHERE p.company_id = $1 AND p.is_active
		GROUP BY p.id, p.sku, p.name, p.cost_price, p.sale_price
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("inventory status: %w", err)
	}
	defer rows.Close()

	var list []repository.InventoryStatusRow
	for rows.Next() {
		var row repository.InventoryStatusRow
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name,
			&row.CostPrice, &row.SalePrice, &row.CurrentStock, &row.TotalValue); err != nil {
			return nil, fmt.Errorf("scan status row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// StaleProducts devuelve los productos activos de la empresa sin movimientos
// desde cutoff, incluyendo los que nunca han registrado movimientos.
func (r *InventoryMovementRepo) StaleProducts(ctx context.Context, companyID string, cutoff time.Time) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.company_id = $1 AND p.is_active
		  AND NOT EXISTS (
		      SELECT 1 FROM inventory_movements m
		      WHERE m.product_id = p.id AND m.entry_date >= $2
		  )
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, companyID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("stale products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name,
			&p.CostPrice, &p.SalePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
