package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// CommissionRepository persistencia de comisiones (solo inserción y lectura).
type CommissionRepository interface {
	Create(ctx context.Context, commission *entity.Commission) error
	GetBySaleAndDelegate(ctx context.Context, saleID, delegateID string) (*entity.Commission, error)
	ListByDelegate(ctx context.Context, delegateID string, limit, offset int) ([]*entity.Commission, error)
}
