package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de deuda. Una deuda pagada no existe: se elimina.
const (
	DebtStatusUnpaid  = "unpaid"
	DebtStatusPartial = "partial"
)

// Debt saldo pendiente de una venta. Como máximo una por venta; solo la escribe el sincronizador.
type Debt struct {
	ID         string
	SaleID     string
	CustomerID string
	Amount     decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
