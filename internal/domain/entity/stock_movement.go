package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento en el libro de inventario.
const (
	DirectionIn  = "in"  // entrada, suma al stock
	DirectionOut = "out" // salida, resta del stock
)

// Tipos de referencia que originan un movimiento.
const (
	RefSale       = "sale"
	RefSaleReturn = "sale_return"
	RefPurchase   = "purchase"
	RefAdjustment = "adjustment"
	RefOpening    = "opening"
)

// StockMovement registro inmutable del libro de inventario (append-only).
// Quantity siempre es positiva; el signo lo da Direction.
type StockMovement struct {
	ID            string
	ProductID     string
	Direction     string
	Quantity      int64
	UnitCost      decimal.Decimal // costo unitario; solo informativo en salidas
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// Signed devuelve la cantidad con signo según la dirección.
func (m *StockMovement) Signed() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}
