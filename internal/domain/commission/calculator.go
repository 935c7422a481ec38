// Package commission calcula la comisión de un representante (servicio de dominio, determinista).
package commission

import (
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Policy foto de la política de comisión vigente al momento de la venta.
type Policy struct {
	Type        string
	Rate        decimal.Decimal
	FixedAmount decimal.Decimal
}

// PolicyOf toma la política configurada en el delegado.
func PolicyOf(d *entity.Delegate) Policy {
	return Policy{Type: d.CommissionType, Rate: d.CommissionRate, FixedAmount: d.FixedAmount}
}

// Calculate percentage: round(monto * tasa / 100, 2); fixed: el monto fijo sin importar la venta.
func Calculate(p Policy, saleAmount decimal.Decimal) (decimal.Decimal, error) {
	switch p.Type {
	case entity.CommissionPercentage:
		if p.Rate.IsNegative() || p.Rate.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, fmt.Errorf("tasa de comisión fuera de rango: %s", p.Rate)
		}
		return saleAmount.Mul(p.Rate).Div(decimal.NewFromInt(100)).Round(2), nil
	case entity.CommissionFixed:
		if p.FixedAmount.IsNegative() {
			return decimal.Zero, fmt.Errorf("monto fijo de comisión negativo: %s", p.FixedAmount)
		}
		return p.FixedAmount, nil
	default:
		return decimal.Zero, fmt.Errorf("tipo de comisión desconocido: %q", p.Type)
	}
}
