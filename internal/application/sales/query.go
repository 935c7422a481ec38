package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetSale venta con sus líneas.
func (s *Service) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilySales, coherence.KindLookup, "get", []any{id},
		func(ctx context.Context) (*entity.Sale, error) {
			sale, err := s.repos.Sales.GetByID(ctx, id)
			if err != nil {
				return nil, domain.AsPersistence("get sale", err)
			}
			if sale == nil {
				return nil, domain.NewNotFoundError("venta", id)
			}
			return sale, nil
		})
}

// ListSales cabeceras filtradas y paginadas.
func (s *Service) ListSales(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	f.Limit, f.Offset = page(f.Limit, f.Offset)
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilySales, coherence.KindList, "list", []any{f},
		func(ctx context.Context) ([]*entity.Sale, error) {
			list, err := s.repos.Sales.List(ctx, f)
			return list, domain.AsPersistence("list sales", err)
		})
}

// ListDebts deudas abiertas.
func (s *Service) ListDebts(ctx context.Context, f repository.DebtFilter) ([]*entity.Debt, error) {
	f.Limit, f.Offset = page(f.Limit, f.Offset)
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilyDebts, coherence.KindList, "list", []any{f},
		func(ctx context.Context) ([]*entity.Debt, error) {
			list, err := s.repos.Debts.List(ctx, f)
			return list, domain.AsPersistence("list debts", err)
		})
}

// GetDebtBySale deuda de la venta; NotFoundError si la venta no tiene saldo pendiente.
func (s *Service) GetDebtBySale(ctx context.Context, saleID string) (*entity.Debt, error) {
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilyDebts, coherence.KindLookup, "by_sale", []any{saleID},
		func(ctx context.Context) (*entity.Debt, error) {
			d, err := s.repos.Debts.GetBySaleID(ctx, saleID)
			if err != nil {
				return nil, domain.AsPersistence("get debt", err)
			}
			if d == nil {
				return nil, domain.NewNotFoundError("deuda", saleID)
			}
			return d, nil
		})
}

// SalesSummary agregado del período [from, to).
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (*entity.SaleSummary, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilyReports, coherence.KindAggregate, "sales_summary", []any{from.UTC(), to.UTC()},
		func(ctx context.Context) (*entity.SaleSummary, error) {
			sum, err := s.repos.Sales.Summarize(ctx, from, to)
			return sum, domain.AsPersistence("summarize sales", err)
		})
}

// ListReturns auditoría de devoluciones de la venta (aplicadas y rechazadas).
func (s *Service) ListReturns(ctx context.Context, saleID string) ([]*entity.SaleReturn, error) {
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilySales, coherence.KindList, "returns", []any{saleID},
		func(ctx context.Context) ([]*entity.SaleReturn, error) {
			list, err := s.repos.Returns.ListBySale(ctx, saleID)
			return list, domain.AsPersistence("list returns", err)
		})
}

// ListCommissionsByDelegate comisiones registradas del representante.
func (s *Service) ListCommissionsByDelegate(ctx context.Context, delegateID string, limit, offset int) ([]*entity.Commission, error) {
	limit, offset = page(limit, offset)
	return coherence.GetOrLoad(ctx, s.cache, coherence.FamilyCommissions, coherence.KindList, "by_delegate", []any{delegateID, limit, offset},
		func(ctx context.Context) ([]*entity.Commission, error) {
			list, err := s.repos.Commissions.ListByDelegate(ctx, delegateID, limit, offset)
			return list, domain.AsPersistence("list commissions", err)
		})
}
