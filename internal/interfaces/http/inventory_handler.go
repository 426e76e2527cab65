package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain"
)

// Días sin movimientos para considerar un producto obsoleto.
const defaultStaleDays = 90

// InventoryHandler maneja las peticiones HTTP del libro de inventario.
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// RegisterEntry registra una entrada de inventario.
// POST /api/inventory/entries
func (h *InventoryHandler) RegisterEntry(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	var in dto.RegisterEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	mov, err := h.ledger.RegisterEntry(c.Context(), companyID, in)
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(mov))
}

// GetStatus devuelve el estado de inventario de los productos activos de la empresa.
// GET /api/inventory/status
func (h *InventoryHandler) GetStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	status, err := h.ledger.GetInventoryStatus(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"total": len(status),
		"data":  status,
	})
}

// GetStale devuelve los productos sin movimientos en los últimos N días (90 por defecto).
// GET /api/inventory/stale?days=90
func (h *InventoryHandler) GetStale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	days := defaultStaleDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe ser un entero positivo"})
		}
		days = n
	}

	products, err := h.ledger.GetStaleProducts(c.Context(), companyID, days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	list := make([]dto.StaleProductDTO, 0, len(products))
	for _, p := range products {
		list = append(list, dto.StaleProductDTO{ProductID: p.ID, SKU: p.SKU, Name: p.Name})
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"data":  list,
	})
}

// mapInventoryError traduce errores de dominio del libro a respuestas HTTP.
func mapInventoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidMoney):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrProductCompanyMismatch):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el producto pertenece a otra empresa"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
