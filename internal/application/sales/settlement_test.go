package sales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/queue"
)

func createPendingSale(t *testing.T, f *salesFixture, items ...dto.SaleItemInput) *entity.Sale {
	t.Helper()
	sale, err := f.createUC.CreateSale(context.Background(), testCompanyID, nil, dto.CreateSaleRequest{Items: items})
	require.NoError(t, err, "la venta pendiente debe crearse")
	return sale
}

// ──────────────────────────────────────────────────────────────────────────────
// Liquidación exitosa
// ──────────────────────────────────────────────────────────────────────────────

// Stock 100, venta de 30 => venta completed y stock 70, con la salida
// referenciando la venta.
func TestSettleSale_CompletaYDescuentaInventario(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 100)
	sale := createPendingSale(t, f, dto.SaleItemInput{ProductID: "p1", Quantity: 30})

	uc := newSettlementUC(f)
	err := uc.SettleSale(context.Background(), sale.ID, "track-1")
	require.NoError(t, err)

	settled, _ := f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusCompleted, settled.Status)
	require.NotNil(t, settled.CompletedAt, "completed_at se fija al completar")
	assert.Equal(t, testNow, *settled.CompletedAt)

	stock, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 70, stock)

	n, _ := f.movRepo.CountBySale(context.Background(), sale.ID)
	assert.EqualValues(t, 1, n, "una salida por línea, referenciando la venta")
}

func TestSettleSale_UnaSalidaPorLinea(t *testing.T) {
	f := newSalesFixture(
		testProduct("p1", "SKU-1", 100, 150),
		testProduct("p2", "SKU-2", 10, 20),
	)
	addStock(f, "p1", 50)
	addStock(f, "p2", 50)
	sale := createPendingSale(t, f,
		dto.SaleItemInput{ProductID: "p1", Quantity: 5},
		dto.SaleItemInput{ProductID: "p2", Quantity: 7},
	)

	require.NoError(t, newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1"))

	n, _ := f.movRepo.CountBySale(context.Background(), sale.ID)
	assert.EqualValues(t, 2, n)

	stock1, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	stock2, _ := f.movRepo.CurrentStock(context.Background(), "p2")
	assert.EqualValues(t, 45, stock1)
	assert.EqualValues(t, 43, stock2)
}

func TestSettleSale_InvalidaElCache(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 100)
	sale := createPendingSale(t, f, dto.SaleItemInput{ProductID: "p1", Quantity: 1})

	f.cache.Set(context.Background(), testCompanyID, []dto.InventoryStatusDTO{{ProductID: "p1"}})

	require.NoError(t, newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1"))

	_, ok := f.cache.Get(context.Background(), testCompanyID)
	assert.False(t, ok, "el snapshot queda invalidado tras liquidar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock insuficiente: terminal, sin efectos parciales
// ──────────────────────────────────────────────────────────────────────────────

// Stock 10, venta de 15 => failed, cero movimientos escritos, y el handler
// resuelve la falla (no pide reintento).
func TestSettleSale_StockInsuficienteMarcaFailed(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 10)
	sale := createPendingSale(t, f, dto.SaleItemInput{ProductID: "p1", Quantity: 15})

	err := newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1")
	assert.NoError(t, err, "la falla de stock es terminal, no un error transitorio")

	failed, _ := f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusFailed, failed.Status)
	assert.Nil(t, failed.CompletedAt)

	n, _ := f.movRepo.CountBySale(context.Background(), sale.ID)
	assert.Zero(t, n, "una venta fallida no deja salidas")
	stock, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 10, stock, "el stock queda intacto")
}

// Multilinea: la primera línea tiene stock pero la segunda no. Nada se escribe.
func TestSettleSale_FallaUnaLineaRevierteTodas(t *testing.T) {
	f := newSalesFixture(
		testProduct("p1", "SKU-1", 100, 150),
		testProduct("p2", "SKU-2", 10, 20),
	)
	addStock(f, "p1", 100)
	addStock(f, "p2", 2)
	sale := createPendingSale(t, f,
		dto.SaleItemInput{ProductID: "p1", Quantity: 5},
		dto.SaleItemInput{ProductID: "p2", Quantity: 10},
	)

	require.NoError(t, newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1"))

	failed, _ := f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusFailed, failed.Status)

	stock1, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	stock2, _ := f.movRepo.CurrentStock(context.Background(), "p2")
	assert.EqualValues(t, 100, stock1, "ningún descuento parcial")
	assert.EqualValues(t, 2, stock2)
}

// Carrito con el mismo producto repetido: cada línea pasa el chequeo individual
// pero la suma excede el stock. La revalidación por salida lo detecta.
func TestSettleSale_ProductoRepetidoNoDejaStockNegativo(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 10)
	sale := createPendingSale(t, f,
		dto.SaleItemInput{ProductID: "p1", Quantity: 8},
		dto.SaleItemInput{ProductID: "p1", Quantity: 8},
	)

	require.NoError(t, newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1"))

	failed, _ := f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusFailed, failed.Status)
	stock, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 10, stock, "el stock nunca queda negativo ni parcialmente descontado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad y reintentos
// ──────────────────────────────────────────────────────────────────────────────

// Si el flip a completed falla (caída de DB simulada), la transacción revierte:
// sin salidas, venta en su estado previo, y el error se propaga como transitorio.
func TestSettleSale_RollbackCompletoSiFallaElCommit(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 100)
	sale := createPendingSale(t, f, dto.SaleItemInput{ProductID: "p1", Quantity: 30})
	f.saleRepo.failUpdateStatus = entity.SaleStatusCompleted

	err := newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1")
	require.ErrorIs(t, err, errTxInducido, "el error transitorio se propaga para reintento")

	after, _ := f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusPending, after.Status, "el rollback restaura el estado previo")
	stock, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 100, stock, "el rollback no deja salidas")

	// El reintento parte del estado intacto y completa.
	f.saleRepo.failUpdateStatus = ""
	require.NoError(t, newSettlementUC(f).SettleSale(context.Background(), sale.ID, "track-1"))
	after, _ = f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusCompleted, after.Status)
	stock, _ = f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 70, stock)
}

func TestSettleSale_EstadoTerminalEsNoOp(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 100)
	sale := createPendingSale(t, f, dto.SaleItemInput{ProductID: "p1", Quantity: 30})

	uc := newSettlementUC(f)
	require.NoError(t, uc.SettleSale(context.Background(), sale.ID, "track-1"))

	// Segunda entrega de la misma tarea (at-least-once).
	require.NoError(t, uc.SettleSale(context.Background(), sale.ID, "track-1"))

	stock, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 70, stock, "la segunda liquidación no duplica salidas")
	n, _ := f.movRepo.CountBySale(context.Background(), sale.ID)
	assert.EqualValues(t, 1, n)
}

func TestSettleSale_VentaInexistenteNoReintenta(t *testing.T) {
	f := newSalesFixture()

	err := newSettlementUC(f).SettleSale(context.Background(), "no-existe", "track-1")
	assert.NoError(t, err, "una venta inexistente se loguea y se descarta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tareas de la cola
// ──────────────────────────────────────────────────────────────────────────────

func TestHandleTask_CreaYLiquidaDesdeElCarrito(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 100)

	uc := newSettlementUC(f)
	err := uc.HandleTask(context.Background(), queue.Task{
		TrackingID: "track-async",
		CompanyID:  testCompanyID,
		Request:    &dto.CreateSaleRequest{Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 30}}},
	})
	require.NoError(t, err)

	sale, err := f.saleRepo.GetByTrackingID(context.Background(), "track-async")
	require.NoError(t, err)
	require.NotNil(t, sale, "la venta creada por el worker conserva el tracking id")
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)

	stock, _ := f.movRepo.CurrentStock(context.Background(), "p1")
	assert.EqualValues(t, 70, stock)
}

func TestHandleTask_CarritoInvalidoEsTerminal(t *testing.T) {
	f := newSalesFixture()

	err := newSettlementUC(f).HandleTask(context.Background(), queue.Task{
		TrackingID: "track-async",
		CompanyID:  testCompanyID,
		Request:    &dto.CreateSaleRequest{Items: []dto.SaleItemInput{{ProductID: "no-existe", Quantity: 1}}},
	})
	assert.NoError(t, err, "un carrito inválido no se reintenta")
	assert.Empty(t, f.saleRepo.sales)
}

func TestHandleExhausted_MarcaLaVentaFailed(t *testing.T) {
	f := newSalesFixture(testProduct("p1", "SKU-1", 100, 150))
	addStock(f, "p1", 100)
	sale := createPendingSale(t, f, dto.SaleItemInput{ProductID: "p1", Quantity: 30})

	uc := newSettlementUC(f)
	uc.HandleExhausted(context.Background(), queue.Task{TrackingID: "track-1", SaleID: sale.ID}, errTxInducido)

	after, _ := f.saleRepo.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.SaleStatusFailed, after.Status,
		"al agotar los reintentos la venta queda failed, no colgada en processing")
}
