package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// SaleReturnRepository auditoría de devoluciones.
type SaleReturnRepository interface {
	Create(ctx context.Context, ret *entity.SaleReturn) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.SaleReturn, error)
}
