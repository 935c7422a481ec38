package usecase

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/validation"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/commission"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// DelegateUseCase alta y mantenimiento de representantes comerciales.
type DelegateUseCase struct {
	repo     repository.DelegateRepository
	cache    *coherence.Layer
	validate *validator.Validate
}

// NewDelegateUseCase construye el caso de uso.
func NewDelegateUseCase(repo repository.DelegateRepository, cache *coherence.Layer) *DelegateUseCase {
	return &DelegateUseCase{repo: repo, cache: cache, validate: validation.New()}
}

// Create registra un representante activo con su política de comisión.
func (uc *DelegateUseCase) Create(ctx context.Context, in dto.CreateDelegateRequest) (*dto.DelegateResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validation.Error(err, "")
	}
	now := time.Now().UTC()
	d := &entity.Delegate{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Phone:          in.Phone,
		CommissionType: in.CommissionType,
		CommissionRate: in.CommissionRate,
		FixedAmount:    in.FixedAmount,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := checkPolicy(d); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, domain.AsPersistence("create delegate", err)
	}
	uc.cache.InvalidateEntities(ctx, coherence.EntityDelegate)
	return toDelegateResponse(d), nil
}

// GetByID obtiene un representante.
func (uc *DelegateUseCase) GetByID(ctx context.Context, id string) (*dto.DelegateResponse, error) {
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyDelegates, coherence.KindLookup, "get", []any{id},
		func(ctx context.Context) (*dto.DelegateResponse, error) {
			d, err := uc.repo.GetByID(ctx, id)
			if err != nil {
				return nil, domain.AsPersistence("get delegate", err)
			}
			if d == nil {
				return nil, domain.NewNotFoundError("representante", id)
			}
			return toDelegateResponse(d), nil
		})
}

// List lista representantes.
func (uc *DelegateUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.DelegateResponse, error) {
	page = page.Normalize()
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyDelegates, coherence.KindList, "list", []any{page.Limit, page.Offset},
		func(ctx context.Context) ([]*dto.DelegateResponse, error) {
			list, err := uc.repo.List(ctx, page.Limit, page.Offset)
			if err != nil {
				return nil, domain.AsPersistence("list delegates", err)
			}
			out := make([]*dto.DelegateResponse, 0, len(list))
			for _, d := range list {
				out = append(out, toDelegateResponse(d))
			}
			return out, nil
		})
}

// UpdatePolicy cambia la política vigente. Las comisiones ya registradas conservan su foto.
func (uc *DelegateUseCase) UpdatePolicy(ctx context.Context, id string, in dto.UpdateDelegatePolicyRequest) (*dto.DelegateResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validation.Error(err, "")
	}
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.AsPersistence("get delegate", err)
	}
	if d == nil {
		return nil, domain.NewNotFoundError("representante", id)
	}
	d.CommissionType = in.CommissionType
	d.CommissionRate = in.CommissionRate
	d.FixedAmount = in.FixedAmount
	if in.Active != nil {
		d.Active = *in.Active
	}
	if err := checkPolicy(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, domain.AsPersistence("update delegate", err)
	}
	uc.cache.InvalidateEntities(ctx, coherence.EntityDelegate)
	return toDelegateResponse(d), nil
}

// checkPolicy rechaza políticas que el calculador no podría aplicar.
func checkPolicy(d *entity.Delegate) error {
	if _, err := commission.Calculate(commission.PolicyOf(d), decimal.Zero); err != nil {
		return domain.NewValidationError("commission_type", err.Error())
	}
	return nil
}

func toDelegateResponse(d *entity.Delegate) *dto.DelegateResponse {
	return &dto.DelegateResponse{
		ID:             d.ID,
		Name:           d.Name,
		Phone:          d.Phone,
		CommissionType: d.CommissionType,
		CommissionRate: d.CommissionRate,
		FixedAmount:    d.FixedAmount,
		Active:         d.Active,
		CreatedAt:      d.CreatedAt,
	}
}
