package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
)

const companyIDKey = "company_id"

// CompanyMiddleware exige el header X-Company-ID y lo deja disponible para los
// handlers. El tenant viene del caller; autenticación y autorización se
// resuelven fuera de este servicio.
func CompanyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := c.Get("X-Company-ID")
		if companyID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "MISSING_COMPANY", Message: "falta el header X-Company-ID",
			})
		}
		c.Locals(companyIDKey, companyID)
		return c.Next()
	}
}

// GetCompanyID devuelve el company id dejado por CompanyMiddleware.
func GetCompanyID(c *fiber.Ctx) string {
	if v, ok := c.Locals(companyIDKey).(string); ok {
		return v
	}
	return ""
}
