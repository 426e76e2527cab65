package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario. El signo lo lleva el tipo,
// nunca la cantidad almacenada: entry suma, exit resta.
const (
	MovementTypeEntry = "entry"
	MovementTypeExit  = "exit"
)

// InventoryMovement es una fila del libro de inventario (append-only).
// El stock actual de un producto es la suma con signo de sus movimientos;
// el core nunca actualiza ni borra filas ya escritas.
type InventoryMovement struct {
	ID        string
	CompanyID string
	ProductID string
	Type      string              // entry | exit
	Quantity  int64               // siempre > 0
	UnitCost  decimal.NullDecimal // NULL solo en filas históricas
	SaleID    *string             // solo en exits generados por una venta liquidada
	EntryDate time.Time           // fecha lógica del evento
	Notes     string
	CreatedAt time.Time
}

// Signed devuelve la cantidad con signo según el tipo.
func (m *InventoryMovement) Signed() int64 {
	if m.Type == MovementTypeExit {
		return -m.Quantity
	}
	return m.Quantity
}
