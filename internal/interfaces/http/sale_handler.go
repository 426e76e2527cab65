package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/domain"
)

// SaleHandler maneja las peticiones HTTP de ventas.
type SaleHandler struct {
	createUC *sales.CreateSaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(createUC *sales.CreateSaleUseCase) *SaleHandler {
	return &SaleHandler{createUC: createUC}
}

// Create registra la venta y encola su liquidación. Responde 202: la venta
// queda pending y el descuento de inventario ocurre en el pipeline.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	sale, trackingID, err := h.createUC.CreateAndQueueSettlement(c.Context(), companyID, in)
	if err != nil {
		return mapSaleError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"tracking_id": trackingID,
		"sale_id":     sale.ID,
		"sale_number": sale.SaleNumber,
		"status":      sale.Status,
	})
}

// CreateAsync difiere creación y liquidación al worker. El caller consulta el
// resultado con el tracking id devuelto.
// POST /api/sales/async
func (h *SaleHandler) CreateAsync(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	trackingID, err := h.createUC.EnqueueSale(c.Context(), companyID, in)
	if err != nil {
		return mapSaleError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.EnqueueSaleResponse{
		TrackingID: trackingID,
		Message:    "venta encolada para procesamiento",
	})
}

// GetByID devuelve la venta con sus líneas.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	sale, err := h.createUC.GetSaleByID(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapSaleError(c, err)
	}
	return c.JSON(sale)
}

// GetByTrackingID resuelve la venta creada por el camino asíncrono. Mientras el
// worker no la haya creado responde 404; el caller debe reintentar.
// GET /api/sales/tracking/:trackingId
func (h *SaleHandler) GetByTrackingID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	sale, err := h.createUC.GetSaleByTrackingID(c.Context(), companyID, c.Params("trackingId"))
	if err != nil {
		return mapSaleError(c, err)
	}
	return c.JSON(sale)
}

// mapSaleError traduce errores de dominio de ventas a respuestas HTTP.
func mapSaleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidMoney):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrSaleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
	case errors.Is(err, domain.ErrProductCompanyMismatch):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el producto pertenece a otra empresa"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
