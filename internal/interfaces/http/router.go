package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC *inventory.LedgerUseCase
	SaleUC   *sales.CreateSaleUseCase
	ReportUC *sales.ReportUseCase
}

// Router registra las rutas de la API. Todas las rutas de /api exigen el
// header X-Company-ID.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", CompanyMiddleware())

	// Libro de inventario
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/entries", inventoryHandler.RegisterEntry)
	invGroup.Get("/status", inventoryHandler.GetStatus)
	invGroup.Get("/stale", inventoryHandler.GetStale)

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Post("/async", saleHandler.CreateAsync)
	salesGroup.Get("/tracking/:trackingId", saleHandler.GetByTrackingID)
	salesGroup.Get("/:id", saleHandler.GetByID)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/sales", reportHandler.GetSalesReport)
	reports.Get("/sales/metrics", reportHandler.GetSalesMetrics)
}
