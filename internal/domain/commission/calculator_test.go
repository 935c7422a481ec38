package commission_test

import (
	"testing"

	"github.com/jhoicas/Ventas-api/internal/domain/commission"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_Porcentaje(t *testing.T) {
	amount, err := commission.Calculate(commission.Policy{
		Type: entity.CommissionPercentage,
		Rate: decimal.NewFromInt(5),
	}, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "50", amount.String())
}

func TestCalculate_PorcentajeRedondeaADosDecimales(t *testing.T) {
	amount, err := commission.Calculate(commission.Policy{
		Type: entity.CommissionPercentage,
		Rate: decimal.RequireFromString("2.5"),
	}, decimal.RequireFromString("33.33"))
	require.NoError(t, err)
	assert.Equal(t, "0.83", amount.String())
}

func TestCalculate_FijoIgnoraMonto(t *testing.T) {
	p := commission.Policy{Type: entity.CommissionFixed, FixedAmount: decimal.NewFromInt(12)}
	a1, err := commission.Calculate(p, decimal.NewFromInt(10))
	require.NoError(t, err)
	a2, err := commission.Calculate(p, decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.True(t, a1.Equal(a2))
	assert.Equal(t, "12", a1.String())
}

func TestCalculate_PoliticaInvalida(t *testing.T) {
	_, err := commission.Calculate(commission.Policy{Type: "tiered"}, decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = commission.Calculate(commission.Policy{Type: entity.CommissionPercentage, Rate: decimal.NewFromInt(-1)}, decimal.NewFromInt(10))
	assert.Error(t, err)
}
