package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission comisión registrada al crear la venta. Inmutable: guarda una foto de la política usada.
type Commission struct {
	ID             string
	SaleID         string
	DelegateID     string
	CommissionType string
	Rate           decimal.Decimal
	BaseAmount     decimal.Decimal
	Amount         decimal.Decimal
	CreatedAt      time.Time
}
