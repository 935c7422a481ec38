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

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía movimientos.
type ProductUseCase struct {
	repo     repository.ProductRepository
	cache    *coherence.Layer
	validate *validator.Validate
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, cache *coherence.Layer) *ProductUseCase {
	return &ProductUseCase{repo: repo, cache: cache, validate: validation.New()}
}

// Create crea un nuevo producto. Cost y stock inician en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validation.Error(err, "")
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, domain.AsPersistence("get product by sku", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Barcode:     in.Barcode,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Cost:        decimal.Zero,
		TaxRate:     in.TaxRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, domain.AsPersistence("create product", err)
	}
	uc.cache.InvalidateEntities(ctx, coherence.EntityProduct)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyProducts, coherence.KindLookup, "get", []any{id},
		func(ctx context.Context) (*dto.ProductResponse, error) {
			return uc.load(ctx, id, uc.repo.GetByID)
		})
}

// GetByBarcode obtiene un producto por código de barras (lector del punto de venta).
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyProducts, coherence.KindLookup, "barcode", []any{barcode},
		func(ctx context.Context) (*dto.ProductResponse, error) {
			return uc.load(ctx, barcode, uc.repo.GetByBarcode)
		})
}

func (uc *ProductUseCase) load(ctx context.Context, key string, get func(context.Context, string) (*entity.Product, error)) (*dto.ProductResponse, error) {
	p, err := get(ctx, key)
	if err != nil {
		return nil, domain.AsPersistence("get product", err)
	}
	if p == nil {
		return nil, domain.NewNotFoundError("producto", key)
	}
	return toProductResponse(p), nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validation.Error(err, "")
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.AsPersistence("get product", err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", id)
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.TaxRate != nil {
		product.TaxRate = *in.TaxRate
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, domain.AsPersistence("update product", err)
	}
	uc.cache.InvalidateEntities(ctx, coherence.EntityProduct)
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page = page.Normalize()
	return coherence.GetOrLoad(ctx, uc.cache, coherence.FamilyProducts, coherence.KindList, "list", []any{page.Limit, page.Offset},
		func(ctx context.Context) (*dto.ProductListResponse, error) {
			list, err := uc.repo.List(ctx, page.Limit, page.Offset)
			if err != nil {
				return nil, domain.AsPersistence("list products", err)
			}
			items := make([]dto.ProductResponse, 0, len(list))
			for _, p := range list {
				items = append(items, *toProductResponse(p))
			}
			return &dto.ProductListResponse{
				Items: items,
				Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
			}, nil
		})
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Cost:         p.Cost,
		TaxRate:      p.TaxRate,
		CurrentStock: p.CurrentStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
