package sales

import (
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DebtState deuda que debería existir para la venta.
type DebtState struct {
	Exists bool
	Amount decimal.Decimal
	Status string
}

// DesiredDebt decide la deuda a partir del remanente Net - Paid.
// Remanente <= 0: no debe existir. En otro caso unpaid si no hubo pago, partial si sí.
func DesiredDebt(sale *entity.Sale) DebtState {
	remaining := sale.Remaining()
	if !remaining.IsPositive() {
		return DebtState{}
	}
	status := entity.DebtStatusUnpaid
	if sale.Paid.IsPositive() {
		status = entity.DebtStatusPartial
	}
	return DebtState{Exists: true, Amount: remaining, Status: status}
}
