package sales_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// errTxInducido se usa para forzar fallas transitorias en los fakes.
var errTxInducido = errors.New("error inducido en el test")

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para probar creación, liquidación y reporte de ventas sin
// PostgreSQL. El fakeTxRunner restaura el estado completo cuando el callback
// falla, simulando el rollback transaccional.
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) ListActiveByCompany(_ context.Context, companyID string) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID && p.IsActive {
			list = append(list, p)
		}
	}
	return list, nil
}

func (r *fakeProductRepo) Deactivate(_ context.Context, productID string) error {
	if p, ok := r.products[productID]; ok {
		p.IsActive = false
	}
	return nil
}

type fakeMovementRepo struct {
	products  *fakeProductRepo
	movements []*entity.InventoryMovement
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	r.movements = append(r.movements, movement)
	return nil
}

func (r *fakeMovementRepo) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			list = append(list, m)
		}
	}
	return list, nil
}

func (r *fakeMovementRepo) CurrentStock(_ context.Context, productID string) (int64, error) {
	var stock int64
	for _, m := range r.movements {
		if m.ProductID == productID {
			stock += m.Signed()
		}
	}
	return stock, nil
}

func (r *fakeMovementRepo) LockProduct(_ context.Context, _ string) error { return nil }

func (r *fakeMovementRepo) CountBySale(_ context.Context, saleID string) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID && m.Type == entity.MovementTypeExit {
			n++
		}
	}
	return n, nil
}

func (r *fakeMovementRepo) InventoryStatus(_ context.Context, _ string) ([]repository.InventoryStatusRow, error) {
	return nil, nil
}

func (r *fakeMovementRepo) StaleProducts(_ context.Context, _ string, _ time.Time) ([]*entity.Product, error) {
	return nil, nil
}

type fakeSaleRepo struct {
	products *fakeProductRepo
	sales    map[string]*entity.Sale
	items    map[string][]*entity.SaleItem

	// failUpdateStatus induce un error al pasar a ese estado (para probar rollback).
	failUpdateStatus string
}

func newFakeSaleRepo(products *fakeProductRepo) *fakeSaleRepo {
	return &fakeSaleRepo{
		products: products,
		sales:    make(map[string]*entity.Sale),
		items:    make(map[string][]*entity.SaleItem),
	}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	cp := *item
	r.items[item.SaleID] = append(r.items[item.SaleID], &cp)
	return nil
}

func (r *fakeSaleRepo) UpdateTotals(_ context.Context, saleID string, amount, cost, profit decimal.Decimal) error {
	if s, ok := r.sales[saleID]; ok {
		s.TotalAmount, s.TotalCost, s.TotalProfit = amount, cost, profit
	}
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) GetByTrackingID(_ context.Context, trackingID string) (*entity.Sale, error) {
	for _, s := range r.sales {
		if s.TrackingID != nil && *s.TrackingID == trackingID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSaleRepo) GetItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	return r.items[saleID], nil
}

func (r *fakeSaleRepo) UpdateStatus(_ context.Context, saleID, status string, completedAt *time.Time) error {
	if status == r.failUpdateStatus {
		return errTxInducido
	}
	if s, ok := r.sales[saleID]; ok {
		s.Status = status
		if completedAt != nil {
			s.CompletedAt = completedAt
		}
	}
	return nil
}

func (r *fakeSaleRepo) matchesFilter(s *entity.Sale, f repository.ReportFilter) bool {
	if s.CompanyID != f.CompanyID || s.Status != entity.SaleStatusCompleted {
		return false
	}
	if s.SaleDate.Before(f.Start) || s.SaleDate.After(f.End) {
		return false
	}
	if f.SKU != nil {
		found := false
		for _, item := range r.items[s.ID] {
			if p := r.products.products[item.ProductID]; p != nil && p.SKU == *f.SKU {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeSaleRepo) GetSalesReport(_ context.Context, f repository.ReportFilter, after *repository.ReportCursorKey, limit int) ([]*entity.Sale, error) {
	var list []*entity.Sale
	for _, s := range r.sales {
		if !r.matchesFilter(s, f) {
			continue
		}
		if after != nil {
			// Solo filas estrictamente menores en orden (sale_date DESC, id DESC).
			if s.SaleDate.After(after.SaleDate) ||
				(s.SaleDate.Equal(after.SaleDate) && s.ID >= after.ID) {
				continue
			}
		}
		cp := *s
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].SaleDate.Equal(list[j].SaleDate) {
			return list[i].SaleDate.After(list[j].SaleDate)
		}
		return list[i].ID > list[j].ID
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeSaleRepo) GetSalesMetrics(_ context.Context, f repository.ReportFilter) (repository.SalesMetricsRow, error) {
	row := repository.SalesMetricsRow{
		TotalAmount: decimal.Zero,
		TotalProfit: decimal.Zero,
	}
	for _, s := range r.sales {
		if !r.matchesFilter(s, f) {
			continue
		}
		row.TotalSales++
		row.TotalAmount = row.TotalAmount.Add(s.TotalAmount)
		row.TotalProfit = row.TotalProfit.Add(s.TotalProfit)
		for _, item := range r.items[s.ID] {
			if f.SKU != nil {
				p := r.products.products[item.ProductID]
				if p == nil || p.SKU != *f.SKU {
					continue
				}
			}
			row.TotalQuantity += item.Quantity
		}
	}
	return row, nil
}

// fakeSalesTxRunner ejecuta el callback con snapshot/restore del estado de
// ventas y del libro: un callback que falla no deja ningún efecto visible.
type fakeSalesTxRunner struct {
	movRepo     *fakeMovementRepo
	productRepo *fakeProductRepo
	saleRepo    *fakeSaleRepo
}

func (r *fakeSalesTxRunner) snapshot() (movs []*entity.InventoryMovement, sales map[string]*entity.Sale, items map[string][]*entity.SaleItem) {
	movs = append([]*entity.InventoryMovement(nil), r.movRepo.movements...)
	sales = make(map[string]*entity.Sale, len(r.saleRepo.sales))
	for id, s := range r.saleRepo.sales {
		cp := *s
		sales[id] = &cp
	}
	items = make(map[string][]*entity.SaleItem, len(r.saleRepo.items))
	for id, list := range r.saleRepo.items {
		items[id] = append([]*entity.SaleItem(nil), list...)
	}
	return movs, sales, items
}

func (r *fakeSalesTxRunner) RunSales(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	movs, sales, items := r.snapshot()
	if err := fn(r.movRepo, r.productRepo, r.saleRepo); err != nil {
		r.movRepo.movements = movs
		r.saleRepo.sales = sales
		r.saleRepo.items = items
		return err
	}
	return nil
}

// Run implementa inventory.TxRunner para construir el LedgerUseCase con los
// mismos fakes.
func (r *fakeSalesTxRunner) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	movs, _, _ := r.snapshot()
	if err := fn(r.movRepo, r.productRepo); err != nil {
		r.movRepo.movements = movs
		return err
	}
	return nil
}

type fakeCache struct {
	snapshots     map[string][]dto.InventoryStatusDTO
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{snapshots: make(map[string][]dto.InventoryStatusDTO)}
}

func (c *fakeCache) Get(_ context.Context, companyID string) ([]dto.InventoryStatusDTO, bool) {
	s, ok := c.snapshots[companyID]
	return s, ok
}

func (c *fakeCache) Set(_ context.Context, companyID string, snapshot []dto.InventoryStatusDTO) {
	c.snapshots[companyID] = snapshot
}

func (c *fakeCache) Invalidate(_ context.Context, companyID string) {
	delete(c.snapshots, companyID)
	c.invalidations++
}

// fakeQueue registra lo encolado sin procesarlo.
type fakeQueue struct {
	settled  []string
	enqueued []dto.CreateSaleRequest
}

func (q *fakeQueue) EnqueueSettle(saleID string) string {
	q.settled = append(q.settled, saleID)
	return "track-" + saleID
}

func (q *fakeQueue) EnqueueCreate(companyID string, in dto.CreateSaleRequest) string {
	q.enqueued = append(q.enqueued, in)
	return "track-async"
}
