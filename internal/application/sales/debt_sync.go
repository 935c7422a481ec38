package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// SyncDebt deja la deuda de la venta en el estado que corresponde a Net - Paid:
// remanente <= 0 elimina la fila; en otro caso hace upsert de la única fila de la venta.
// Devuelve la deuda resultante o nil. Debe llamarse con los repos de la transacción en curso.
func SyncDebt(ctx context.Context, debts repository.DebtRepository, sale *entity.Sale, now time.Time) (*entity.Debt, error) {
	want := domainsales.DesiredDebt(sale)
	if !want.Exists {
		return nil, debts.DeleteBySaleID(ctx, sale.ID)
	}
	debt := &entity.Debt{
		ID:         uuid.New().String(),
		SaleID:     sale.ID,
		CustomerID: sale.CustomerID,
		Amount:     want.Amount,
		Status:     want.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := debts.Upsert(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}
