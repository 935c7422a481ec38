package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// DebtFilter filtros para listar deudas.
type DebtFilter struct {
	CustomerID string
	Limit      int
	Offset     int
}

// DebtRepository persistencia de deudas. Solo la usa el sincronizador de deudas para escribir.
type DebtRepository interface {
	GetBySaleID(ctx context.Context, saleID string) (*entity.Debt, error)
	// Upsert crea o actualiza la única deuda de la venta (clave única sale_id).
	Upsert(ctx context.Context, debt *entity.Debt) error
	DeleteBySaleID(ctx context.Context, saleID string) error
	List(ctx context.Context, filter DebtFilter) ([]*entity.Debt, error)
}
