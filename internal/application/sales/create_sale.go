package sales

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

// CreateSaleUseCase construye el agregado de venta: cabecera pendiente más
// líneas con snapshot de precios y splits financieros, todo en una transacción.
// La liquidación (descuento de inventario) es responsabilidad del pipeline.
type CreateSaleUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	queue       SettlementQueue
	numberGen   NumberGenerator
	clock       clock.Clock
	log         *logger.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	queue SettlementQueue,
	numberGen NumberGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		queue:       queue,
		numberGen:   numberGen,
		clock:       clk,
		log:         log,
	}
}

// CreateSale valida el carrito completo antes de escribir (fail fast) y crea
// cabecera, líneas y totales en una transacción: o existe la venta completa
// con totales consistentes, o no existe nada. trackingID puede ser nil
// (camino síncrono).
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, companyID string, trackingID *string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("la venta no tiene líneas: %w", domain.ErrInvalidQuantity)
	}

	// Validación completa antes de cualquier escritura, identificando el
	// producto ofensor.
	products := make(map[string]*entity.Product, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrInvalidQuantity)
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrProductNotFound)
		}
		if product.CompanyID != companyID {
			return nil, fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrProductCompanyMismatch)
		}
		products[item.ProductID] = product
	}

	now := uc.clock.Now()
	sale := &entity.Sale{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SaleNumber:  uc.numberGen(now),
		TrackingID:  trackingID,
		TotalAmount: decimal.Zero,
		TotalCost:   decimal.Zero,
		TotalProfit: decimal.Zero,
		Status:      entity.SaleStatusPending,
		SaleDate:    now,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := uc.txRunner.RunSales(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		totalAmount := decimal.Zero
		totalCost := decimal.Zero
		for _, item := range in.Items {
			product := products[item.ProductID]
			qty := decimal.NewFromInt(item.Quantity)
			subtotal := qty.Mul(product.SalePrice)
			costTotal := qty.Mul(product.CostPrice)

			line := &entity.SaleItem{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.SalePrice,
				UnitCost:  product.CostPrice,
				Subtotal:  subtotal,
				CostTotal: costTotal,
				Profit:    subtotal.Sub(costTotal),
			}
			if err := saleRepo.CreateItem(ctx, line); err != nil {
				return err
			}

			totalAmount = totalAmount.Add(subtotal)
			totalCost = totalCost.Add(costTotal)
		}

		sale.TotalAmount = totalAmount
		sale.TotalCost = totalCost
		sale.TotalProfit = totalAmount.Sub(totalCost)
		return saleRepo.UpdateTotals(ctx, sale.ID, sale.TotalAmount, sale.TotalCost, sale.TotalProfit)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Str("company_id", companyID).
		Msg("venta creada en estado pending")
	return sale, nil
}

// CreateAndQueueSettlement camino síncrono expuesto por la API: crea la venta
// y encola su liquidación. Devuelve la venta pendiente y el tracking id.
func (uc *CreateSaleUseCase) CreateAndQueueSettlement(ctx context.Context, companyID string, in dto.CreateSaleRequest) (*entity.Sale, string, error) {
	sale, err := uc.CreateSale(ctx, companyID, nil, in)
	if err != nil {
		return nil, "", err
	}
	trackingID := uc.queue.EnqueueSettle(sale.ID)
	return sale, trackingID, nil
}

// EnqueueSale camino asíncrono: difiere creación y liquidación al worker y
// devuelve de inmediato el tracking id. El caller consulta el estado de la
// venta con ese id; no hay notificación push.
func (uc *CreateSaleUseCase) EnqueueSale(ctx context.Context, companyID string, in dto.CreateSaleRequest) (string, error) {
	if len(in.Items) == 0 {
		return "", fmt.Errorf("la venta no tiene líneas: %w", domain.ErrInvalidQuantity)
	}
	return uc.queue.EnqueueCreate(companyID, in), nil
}

// GetSaleByID devuelve la venta con sus líneas.
func (uc *CreateSaleUseCase) GetSaleByID(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.CompanyID != companyID {
		return nil, domain.ErrSaleNotFound
	}
	items, err := uc.saleRepo.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSaleResponse(sale, items)
	return &resp, nil
}

// GetSaleByTrackingID resuelve la venta creada por el camino asíncrono.
// Mientras el worker no haya creado la venta, responde ErrSaleNotFound.
func (uc *CreateSaleUseCase) GetSaleByTrackingID(ctx context.Context, companyID, trackingID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.CompanyID != companyID {
		return nil, domain.ErrSaleNotFound
	}
	return uc.GetSaleByID(ctx, companyID, sale.ID)
}

// toSaleResponse convierte la entidad y sus líneas al DTO de respuesta.
func toSaleResponse(sale *entity.Sale, items []*entity.SaleItem) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:          sale.ID,
		CompanyID:   sale.CompanyID,
		SaleNumber:  sale.SaleNumber,
		TrackingID:  sale.TrackingID,
		TotalAmount: sale.TotalAmount,
		TotalCost:   sale.TotalCost,
		TotalProfit: sale.TotalProfit,
		Status:      sale.Status,
		SaleDate:    sale.SaleDate,
		CompletedAt: sale.CompletedAt,
		Notes:       sale.Notes,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			UnitCost:  item.UnitCost,
			Subtotal:  item.Subtotal,
			CostTotal: item.CostTotal,
			Profit:    item.Profit,
		})
	}
	return resp
}
