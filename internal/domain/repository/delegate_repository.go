package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// DelegateRepository almacén de representantes y sus políticas de comisión.
type DelegateRepository interface {
	Create(ctx context.Context, delegate *entity.Delegate) error
	GetByID(ctx context.Context, id string) (*entity.Delegate, error)
	Update(ctx context.Context, delegate *entity.Delegate) error
	List(ctx context.Context, limit, offset int) ([]*entity.Delegate, error)
}
