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
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes. El saldo a favor solo lo mueven las ventas y pagos.
type CustomerUseCase struct {
	repo     repository.CustomerRepository
	cache    *coherence.Layer
	validate *validator.Validate
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, cache *coherence.Layer) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, cache: cache, validate: validation.New()}
}

// Create crea un nuevo cliente. El documento (tax_id) es opcional pero único.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validation.Error(err, "")
	}
	if in.TaxID != "" {
		existing, err := uc.repo.GetByTaxID(ctx, in.TaxID)
		if err != nil {
			return nil, domain.AsPersistence("get customer by tax id", err)
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, domain.AsPersistence("create customer", err)
	}
	uc.cache.InvalidateEntities(ctx, coherence.EntityCustomer)
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente con su saldo a favor.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyCustomers, coherence.KindLookup, "get", []any{id},
		func(ctx context.Context) (*dto.CustomerResponse, error) {
			c, err := uc.repo.GetByID(ctx, id)
			if err != nil {
				return nil, domain.AsPersistence("get customer", err)
			}
			if c == nil {
				return nil, domain.NewNotFoundError("cliente", id)
			}
			return toCustomerResponse(c), nil
		})
}

// List lista clientes.
func (uc *CustomerUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page = page.Normalize()
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyCustomers, coherence.KindList, "list", []any{page.Limit, page.Offset},
		func(ctx context.Context) ([]*dto.CustomerResponse, error) {
			list, err := uc.repo.List(ctx, page.Limit, page.Offset)
			if err != nil {
				return nil, domain.AsPersistence("list customers", err)
			}
			out := make([]*dto.CustomerResponse, 0, len(list))
			for _, c := range list {
				out = append(out, toCustomerResponse(c))
			}
			return out, nil
		})
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Balance:   c.Balance,
		CreatedAt: c.CreatedAt,
	}
}
