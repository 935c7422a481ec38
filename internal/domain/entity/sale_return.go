package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del registro de auditoría de devoluciones.
const (
	ReturnStatusApplied  = "applied"
	ReturnStatusRejected = "rejected"
)

// SaleReturn registro de auditoría de una devolución (aplicada o rechazada).
type SaleReturn struct {
	ID           string
	SaleID       string
	Reason       string
	Status       string
	Error        string
	Amount       decimal.Decimal // reducción del neto de la venta
	RefundAmount decimal.Decimal // reducción de lo pagado (a reembolsar)
	Lines        []SaleReturnLine
	CreatedBy    string
	CreatedAt    time.Time
}

// SaleReturnLine unidades devueltas de una línea.
type SaleReturnLine struct {
	ItemID    string          `json:"item_id"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}
