package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrProductNotFound        = errors.New("producto no encontrado")
	ErrProductCompanyMismatch = errors.New("el producto no pertenece a esta empresa")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInvalidMoney           = errors.New("monto inválido")
	ErrSaleNotFound           = errors.New("venta no encontrada")
)

// InsufficientStockError detalla qué producto no tiene stock suficiente.
// Unwrap retorna ErrInsufficientStock para que errors.Is siga funcionando.
type InsufficientStockError struct {
	ProductID string
	SKU       string
	Required  int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: requerido %d, disponible %d",
		e.SKU, e.Required, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
