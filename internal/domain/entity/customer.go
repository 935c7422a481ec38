package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente. Balance es el saldo a favor acumulado por pagos en exceso.
type Customer struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
