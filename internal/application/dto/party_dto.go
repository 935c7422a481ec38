package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	TaxID string `json:"tax_id" validate:"max=50"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=50"`
}

// CustomerResponse salida de un cliente; Balance es el saldo a favor.
type CustomerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	TaxID     string          `json:"tax_id,omitempty"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateDelegateRequest entrada para crear un representante comercial.
type CreateDelegateRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Phone          string          `json:"phone" validate:"max=50"`
	CommissionType string          `json:"commission_type" validate:"required,oneof=percentage fixed"`
	CommissionRate decimal.Decimal `json:"commission_rate" validate:"gte=0,lte=100"`
	FixedAmount    decimal.Decimal `json:"fixed_amount" validate:"gte=0"`
}

// UpdateDelegatePolicyRequest cambia la política de comisión; no afecta comisiones ya registradas.
type UpdateDelegatePolicyRequest struct {
	CommissionType string          `json:"commission_type" validate:"required,oneof=percentage fixed"`
	CommissionRate decimal.Decimal `json:"commission_rate" validate:"gte=0,lte=100"`
	FixedAmount    decimal.Decimal `json:"fixed_amount" validate:"gte=0"`
	Active         *bool           `json:"active"`
}

// DelegateResponse salida de un representante.
type DelegateResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	CommissionType string          `json:"commission_type"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	FixedAmount    decimal.Decimal `json:"fixed_amount"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CommissionResponse comisión registrada (inmutable).
type CommissionResponse struct {
	ID             string          `json:"id"`
	SaleID         string          `json:"sale_id"`
	DelegateID     string          `json:"delegate_id"`
	CommissionType string          `json:"commission_type"`
	Rate           decimal.Decimal `json:"rate"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}
