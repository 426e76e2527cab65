package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
)

// ReportHandler maneja las consultas de reporte y métricas de ventas.
type ReportHandler struct {
	reportUC *sales.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(reportUC *sales.ReportUseCase) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// GetSalesReport devuelve una página de ventas completed del rango.
// GET /api/reports/sales?start=2026-01-01&end=2026-01-31&sku=ABC&page_size=15&cursor=...
func (h *ReportHandler) GetSalesReport(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	start, end, sku, ok := parseReportFilter(c)
	if !ok {
		return nil // la respuesta de error ya fue escrita
	}

	pageSize := 0
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "page_size debe ser un entero positivo"})
		}
		pageSize = n
	}

	report, err := h.reportUC.GetSalesReport(c.Context(), companyID, start, end, sku, pageSize, c.Query("cursor"))
	if err != nil {
		if errors.Is(err, sales.ErrInvalidCursor) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CURSOR", Message: "cursor inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}

// GetSalesMetrics devuelve las métricas agregadas del rango.
// GET /api/reports/sales/metrics?start=...&end=...&sku=...
func (h *ReportHandler) GetSalesMetrics(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)

	start, end, sku, ok := parseReportFilter(c)
	if !ok {
		return nil
	}

	metrics, err := h.reportUC.GetSalesMetrics(c.Context(), companyID, start, end, sku)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(metrics)
}

// parseReportFilter lee start, end y sku del query string. Acepta fecha sola
// (2026-01-31, fin de día inclusive) o RFC3339. ok=false indica que ya se
// respondió el error.
func parseReportFilter(c *fiber.Ctx) (start, end time.Time, sku *string, ok bool) {
	var err error
	start, err = parseDate(c.Query("start"), false)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start inválido (YYYY-MM-DD o RFC3339)"})
		return
	}
	end, err = parseDate(c.Query("end"), true)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "end inválido (YYYY-MM-DD o RFC3339)"})
		return
	}
	if end.Before(start) {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "end es anterior a start"})
		return
	}
	if raw := c.Query("sku"); raw != "" {
		sku = &raw
	}
	return start, end, sku, true
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("vacío")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Nanosecond), nil
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
