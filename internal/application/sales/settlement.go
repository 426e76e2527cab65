package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/queue"
	"github.com/jhoicas/inventario-ventas/pkg/clock"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

// SettlementUseCase convierte una venta pendiente en salidas de inventario
// confirmadas y un estado terminal:
//
//	pending -> processing -> completed
//	                      -> failed
//
// Verificación de stock, salidas y cambio de estado van en una sola
// transacción: un crash a mitad de camino deja la venta en su estado previo,
// nunca parcialmente liquidada. Cada intento rederiva todo del estado actual
// del libro, por lo que reintentar es seguro (idempotente respecto al estado
// final).
type SettlementUseCase struct {
	txRunner TxRunner
	saleRepo repository.SaleRepository
	ledger   *inventory.LedgerUseCase
	createUC *CreateSaleUseCase
	cache    inventory.StatusCache
	clock    clock.Clock
	log      *logger.Logger
}

// NewSettlementUseCase construye el caso de uso.
func NewSettlementUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	ledger *inventory.LedgerUseCase,
	createUC *CreateSaleUseCase,
	cache inventory.StatusCache,
	clk clock.Clock,
	log *logger.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		txRunner: txRunner,
		saleRepo: saleRepo,
		ledger:   ledger,
		createUC: createUC,
		cache:    cache,
		clock:    clk,
		log:      log,
	}
}

// HandleTask implementa queue.Handler: liquida una venta existente o crea y
// liquida desde el carrito según la tarea. Retornar error pide reintento al
// dispatcher; las fallas de negocio terminales se resuelven aquí y retornan nil.
func (uc *SettlementUseCase) HandleTask(ctx context.Context, task queue.Task) error {
	if task.SaleID != "" {
		return uc.SettleSale(ctx, task.SaleID, task.TrackingID)
	}
	return uc.createAndSettle(ctx, task)
}

// HandleExhausted implementa queue.Handler: al agotar los reintentos marca la
// venta como failed (si existe) y deja el diagnóstico en el log.
func (uc *SettlementUseCase) HandleExhausted(ctx context.Context, task queue.Task, err error) {
	uc.log.Error().
		Err(err).
		Str("tracking_id", task.TrackingID).
		Str("sale_id", task.SaleID).
		Msg("liquidación agotó sus reintentos")

	if task.SaleID != "" {
		uc.markFailed(ctx, task.SaleID, task.TrackingID, err)
	}
}

// SettleSale ejecuta la transición processing -> completed/failed de una venta.
// Una venta observada en estado terminal es un no-op (estado terminal
// idempotente). Los errores de stock son terminales: marcan failed y no se
// reintentan; cualquier otro error se propaga como transitorio.
func (uc *SettlementUseCase) SettleSale(ctx context.Context, saleID, trackingID string) error {
	var (
		companyID  string
		saleNumber string
		settled    bool
	)

	err := uc.txRunner.RunSales(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		// El FOR UPDATE más el chequeo de estado impiden que dos liquidaciones
		// de la misma venta se intercalen.
		sale, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", saleID, domain.ErrSaleNotFound)
		}
		companyID = sale.CompanyID
		saleNumber = sale.SaleNumber

		if sale.IsTerminal() {
			uc.log.Info().
				Str("sale_id", saleID).
				Str("status", sale.Status).
				Msg("venta ya liquidada, nada que hacer")
			return nil
		}

		// Marcador de intención; una venta ya en processing es un reintento
		// de esta misma tarea.
		if sale.Status == entity.SaleStatusPending {
			if err := saleRepo.UpdateStatus(ctx, saleID, entity.SaleStatusProcessing, nil); err != nil {
				return err
			}
		}

		items, err := saleRepo.GetItems(ctx, saleID)
		if err != nil {
			return err
		}

		// Guarda defensiva: el límite transaccional impide exits parciales,
		// pero una doble liquidación nunca debe duplicar salidas.
		if n, err := movRepo.CountBySale(ctx, saleID); err != nil {
			return err
		} else if n > 0 {
			return fmt.Errorf("venta %s ya tiene %d salidas registradas", saleID, n)
		}

		// Fase 1: verificar stock de todas las líneas bajo lock por producto.
		for _, item := range items {
			if err := movRepo.LockProduct(ctx, item.ProductID); err != nil {
				return err
			}
			stock, err := movRepo.CurrentStock(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if stock < item.Quantity {
				product, err := productRepo.GetByID(ctx, item.ProductID)
				if err != nil {
					return err
				}
				sku := item.ProductID
				if product != nil {
					sku = product.SKU
				}
				return &domain.InsufficientStockError{
					ProductID: item.ProductID,
					SKU:       sku,
					Required:  item.Quantity,
					Available: stock,
				}
			}
		}

		// Fase 2: una salida por línea, referenciando la venta. CreateExitInTx
		// revalida el stock antes de escribir, así un carrito con el mismo
		// producto repetido tampoco puede dejar stock negativo.
		for _, item := range items {
			if _, err := uc.ledger.CreateExitInTx(ctx, movRepo, productRepo,
				sale.CompanyID, item.ProductID, item.Quantity, &sale.ID); err != nil {
				return err
			}
		}

		completedAt := uc.clock.Now()
		if err := saleRepo.UpdateStatus(ctx, saleID, entity.SaleStatusCompleted, &completedAt); err != nil {
			return err
		}
		settled = true
		return nil
	})

	switch {
	case err == nil:
		if settled {
			uc.cache.Invalidate(ctx, companyID)
			uc.log.Info().
				Str("tracking_id", trackingID).
				Str("sale_id", saleID).
				Str("sale_number", saleNumber).
				Msg("venta liquidada")
		}
		return nil

	case errors.Is(err, domain.ErrInsufficientStock):
		// Terminal para este intento de liquidación: la venta pasa a failed y
		// no se reintenta con otros datos.
		uc.markFailed(ctx, saleID, trackingID, err)
		return nil

	case errors.Is(err, domain.ErrSaleNotFound):
		uc.log.Error().
			Str("tracking_id", trackingID).
			Str("sale_id", saleID).
			Msg("venta a liquidar no existe")
		return nil

	default:
		// Transitorio (DB caída, timeout): el dispatcher reintenta.
		return err
	}
}

// createAndSettle camino asíncrono: crea la venta desde el carrito (dejando el
// tracking id registrado en ella) y la liquida. Los errores de validación del
// carrito son terminales: no hay venta que marcar, solo diagnóstico.
func (uc *SettlementUseCase) createAndSettle(ctx context.Context, task queue.Task) error {
	sale, err := uc.createUC.CreateSale(ctx, task.CompanyID, &task.TrackingID, *task.Request)
	if err != nil {
		if isValidationError(err) {
			uc.log.Error().
				Err(err).
				Str("tracking_id", task.TrackingID).
				Str("company_id", task.CompanyID).
				Msg("carrito inválido, venta no creada")
			return nil
		}
		return err
	}
	return uc.SettleSale(ctx, sale.ID, task.TrackingID)
}

// markFailed registra el estado terminal failed en una transacción corta e
// independiente (la transacción de liquidación ya fue revertida).
func (uc *SettlementUseCase) markFailed(ctx context.Context, saleID, trackingID string, cause error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil || sale == nil || sale.IsTerminal() {
		return
	}
	if err := uc.saleRepo.UpdateStatus(ctx, saleID, entity.SaleStatusFailed, nil); err != nil {
		uc.log.Error().
			Err(err).
			Str("sale_id", saleID).
			Msg("no se pudo marcar la venta como failed")
		return
	}
	uc.log.Error().
		Err(cause).
		Str("tracking_id", trackingID).
		Str("sale_id", saleID).
		Str("sale_number", sale.SaleNumber).
		Msg("venta marcada como failed")
}

// isValidationError distingue las fallas de carrito que no tiene sentido reintentar.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrProductNotFound) ||
		errors.Is(err, domain.ErrProductCompanyMismatch) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidMoney)
}
