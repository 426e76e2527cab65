package inventory_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: implementan los puertos de repositorio sobre slices/maps
// para probar los use cases sin PostgreSQL.
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

	// failCreate induce un error en Create para probar rollback.
	failCreate error
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	if r.failCreate != nil {
		return r.failCreate
	}
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

func (r *fakeMovementRepo) InventoryStatus(ctx context.Context, companyID string) ([]repository.InventoryStatusRow, error) {
	products, _ := r.products.ListActiveByCompany(ctx, companyID)
	var rows []repository.InventoryStatusRow
	for _, p := range products {
		row := repository.InventoryStatusRow{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			CostPrice:  p.CostPrice,
			SalePrice:  p.SalePrice,
			TotalValue: decimal.Zero,
		}
		for _, m := range r.movements {
			if m.ProductID != p.ID {
				continue
			}
			row.CurrentStock += m.Signed()
			if m.Type == entity.MovementTypeEntry && m.UnitCost.Valid {
				row.TotalValue = row.TotalValue.Add(m.UnitCost.Decimal.Mul(decimal.NewFromInt(m.Quantity)))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *fakeMovementRepo) StaleProducts(ctx context.Context, companyID string, cutoff time.Time) ([]*entity.Product, error) {
	products, _ := r.products.ListActiveByCompany(ctx, companyID)
	var stale []*entity.Product
	for _, p := range products {
		recent := false
		for _, m := range r.movements {
			if m.ProductID == p.ID && !m.EntryDate.Before(cutoff) {
				recent = true
				break
			}
		}
		if !recent {
			stale = append(stale, p)
		}
	}
	return stale, nil
}

// fakeTxRunner ejecuta el callback sobre los fakes, restaurando el libro si el
// callback falla (simula el rollback de la transacción real).
type fakeTxRunner struct {
	movRepo     *fakeMovementRepo
	productRepo *fakeProductRepo
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	snapshot := append([]*entity.InventoryMovement(nil), r.movRepo.movements...)
	if err := fn(r.movRepo, r.productRepo); err != nil {
		r.movRepo.movements = snapshot
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

type fakeCompanyRepo struct {
	companies []*entity.Company
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	for _, c := range r.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) ListActive(_ context.Context) ([]*entity.Company, error) {
	var list []*entity.Company
	for _, c := range r.companies {
		if c.IsActive {
			list = append(list, c)
		}
	}
	return list, nil
}
