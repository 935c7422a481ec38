package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/validation"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// PaymentCommand abono a una venta con saldo pendiente.
type PaymentCommand struct {
	SaleID string          `json:"sale_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"required,oneof=cash card transfer credit"`
}

// RecordPayment suma el abono a lo pagado (sin superar el neto), acredita el exceso al cliente
// y sincroniza la deuda. Solo modifica Paid y el estado de pago.
func (s *Service) RecordPayment(ctx context.Context, cmd PaymentCommand) (*entity.Sale, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, validation.Error(err, "")
	}
	now := s.now()
	var sale *entity.Sale
	var excess decimal.Decimal
	err := s.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		sale, err = repos.Sales.GetForUpdate(ctx, cmd.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFoundError("venta", cmd.SaleID)
		}
		if !sale.Returnable() {
			return &domain.ConsistencyError{Reason: "la venta en estado " + sale.Status + " no admite pagos"}
		}
		if !sale.Remaining().IsPositive() {
			return &domain.ConsistencyError{Reason: "la venta no tiene saldo pendiente"}
		}

		excess = domainsales.ApplyPayment(sale, sale.Paid.Add(cmd.Amount))
		sale.UpdatedAt = now
		if err := repos.Sales.Update(ctx, sale); err != nil {
			return err
		}
		if excess.IsPositive() && !sale.IsAnonymous() {
			if err := repos.Customers.AddBalance(ctx, sale.CustomerID, excess); err != nil {
				return err
			}
		}
		_, err = SyncDebt(ctx, repos.Debts, sale, now)
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("record payment", err)
	}
	s.cache.InvalidateEntities(ctx, coherence.EntitySale, coherence.EntityDebt)

	s.log.Info().Str("sale_id", sale.ID).Str("amount", cmd.Amount.String()).Str("method", cmd.Method).
		Str("excess", excess.String()).Str("payment_status", sale.PaymentStatus).Msg("ventas: pago registrado")
	return sale, nil
}
