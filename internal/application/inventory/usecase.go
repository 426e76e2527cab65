package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/pkg/clock"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
	"github.com/shopspring/decimal"
)

// LedgerUseCase opera el libro de inventario: entradas, salidas con validación
// de stock, estado agregado por empresa y detección de productos sin rotación.
// Las salidas serializan check+write por producto vía advisory lock dentro de
// la misma transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	movRepo     repository.InventoryMovementRepository
	productRepo repository.ProductRepository
	cache       StatusCache
	clock       clock.Clock
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	cache StatusCache,
	clk clock.Clock,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		cache:       cache,
		clock:       clk,
		log:         log,
	}
}

// RegisterEntry registra una entrada de inventario. Valida cantidad, costo y
// pertenencia del producto antes de escribir; al confirmar invalida el snapshot
// cacheado de la empresa.
func (uc *LedgerUseCase) RegisterEntry(ctx context.Context, companyID string, in dto.RegisterEntryRequest) (*entity.InventoryMovement, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrInvalidQuantity)
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrInvalidMoney)
	}

	if _, err := uc.ownedProduct(ctx, uc.productRepo, companyID, in.ProductID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: in.ProductID,
		Type:      entity.MovementTypeEntry,
		Quantity:  in.Quantity,
		UnitCost:  decimal.NullDecimal{Decimal: in.UnitCost, Valid: true},
		EntryDate: now,
		Notes:     in.Notes,
		CreatedAt: now,
	}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, companyID)
	return mov, nil
}

// CreateExit registra una salida de inventario validando el stock disponible.
// Check y write van en la misma transacción, serializados por producto.
// saleID referencia la venta cuando la salida proviene de una liquidación.
func (uc *LedgerUseCase) CreateExit(ctx context.Context, companyID, productID string, quantity int64, saleID *string) (*entity.InventoryMovement, error) {
	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		mov, err = uc.CreateExitInTx(ctx, movRepo, productRepo, companyID, productID, quantity, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, companyID)
	return mov, nil
}

// CreateExitInTx ejecuta la salida con los repositorios del caller (misma
// transacción). Lo usa el pipeline de liquidación para componer sus exits con
// el cambio de estado de la venta en una sola transacción.
// El caller es responsable de invalidar el cache tras el commit.
func (uc *LedgerUseCase) CreateExitInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	companyID, productID string,
	quantity int64,
	saleID *string,
) (*entity.InventoryMovement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrInvalidQuantity)
	}
	product, err := uc.ownedProduct(ctx, productRepo, companyID, productID)
	if err != nil {
		return nil, err
	}

	// Serializa contra otras salidas del mismo producto; el stock es una suma
	// derivada, no hay fila que bloquear con FOR UPDATE.
	if err := movRepo.LockProduct(ctx, productID); err != nil {
		return nil, err
	}
	stock, err := movRepo.CurrentStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	if stock < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			SKU:       product.SKU,
			Required:  quantity,
			Available: stock,
		}
	}

	now := uc.clock.Now()
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: productID,
		Type:      entity.MovementTypeExit,
		Quantity:  quantity,
		UnitCost:  decimal.NullDecimal{Decimal: product.CostPrice, Valid: true},
		SaleID:    saleID,
		EntryDate: now,
		CreatedAt: now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// CurrentStock devuelve el stock actual del producto (suma con signo, 0 sin movimientos).
func (uc *LedgerUseCase) CurrentStock(ctx context.Context, productID string) (int64, error) {
	return uc.movRepo.CurrentStock(ctx, productID)
}

// HasAvailableStock indica si hay al menos quantity unidades del producto.
// Lectura pura; para decidir una salida debe evaluarse dentro de la misma
// transacción que la escritura (ver CreateExitInTx).
func (uc *LedgerUseCase) HasAvailableStock(ctx context.Context, productID string, quantity int64) (bool, error) {
	stock, err := uc.movRepo.CurrentStock(ctx, productID)
	if err != nil {
		return false, err
	}
	return stock >= quantity, nil
}

// GetInventoryStatus devuelve el estado de inventario de los productos activos
// de la empresa, servido desde cache si el snapshot sigue fresco.
func (uc *LedgerUseCase) GetInventoryStatus(ctx context.Context, companyID string) ([]dto.InventoryStatusDTO, error) {
	if snapshot, ok := uc.cache.Get(ctx, companyID); ok {
		return snapshot, nil
	}

	rows, err := uc.movRepo.InventoryStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}

	status := make([]dto.InventoryStatusDTO, 0, len(rows))
	for _, row := range rows {
		margin := row.SalePrice.Sub(row.CostPrice)
		status = append(status, dto.InventoryStatusDTO{
			ProductID:       row.ProductID,
			SKU:             row.SKU,
			Name:            row.Name,
			CurrentStock:    row.CurrentStock,
			CostPrice:       row.CostPrice,
			SalePrice:       row.SalePrice,
			TotalValue:      row.TotalValue,
			ProjectedProfit: margin.Mul(decimal.NewFromInt(row.CurrentStock)),
		})
	}

	uc.cache.Set(ctx, companyID, status)
	return status, nil
}

// GetStaleProducts devuelve los productos cuyo movimiento más reciente es
// anterior a now-daysOld, o que nunca han tenido movimientos.
func (uc *LedgerUseCase) GetStaleProducts(ctx context.Context, companyID string, daysOld int) ([]*entity.Product, error) {
	cutoff := uc.clock.Now().AddDate(0, 0, -daysOld)
	return uc.movRepo.StaleProducts(ctx, companyID, cutoff)
}

// ToMovementResponse convierte la entidad a su DTO de respuesta.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		SaleID:    m.SaleID,
		EntryDate: m.EntryDate,
		Notes:     m.Notes,
	}
	if m.UnitCost.Valid {
		cost := m.UnitCost.Decimal
		resp.UnitCost = &cost
	}
	return resp
}

// ownedProduct valida existencia y pertenencia del producto a la empresa.
func (uc *LedgerUseCase) ownedProduct(ctx context.Context, productRepo repository.ProductRepository, companyID, productID string) (*entity.Product, error) {
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrProductNotFound)
	}
	if product.CompanyID != companyID {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrProductCompanyMismatch)
	}
	return product, nil
}
