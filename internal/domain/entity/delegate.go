package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de política de comisión.
const (
	CommissionPercentage = "percentage"
	CommissionFixed      = "fixed"
)

// Delegate representante comercial con su política de comisión vigente.
type Delegate struct {
	ID             string
	Name           string
	Phone          string
	CommissionType string
	CommissionRate decimal.Decimal // porcentaje, solo para percentage
	FixedAmount    decimal.Decimal // monto fijo, solo para fixed
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
