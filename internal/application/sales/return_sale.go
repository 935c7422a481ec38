package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/validation"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// ReturnLine unidades a devolver de una línea de la venta.
type ReturnLine struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0,lte=1000000000"`
}

// ReturnCommand devolución parcial o total.
type ReturnCommand struct {
	SaleID string       `json:"sale_id" validate:"required"`
	Lines  []ReturnLine `json:"lines" validate:"required,min=1,dive"`
	Reason string       `json:"reason" validate:"max=500"`
	UserID string       `json:"user_id"`
}

// ProcessReturn revierte unidades de una venta completada o parcialmente devuelta y recalcula
// todo lo derivado: totales de línea y cabecera, pagado (nunca mayor que el nuevo neto), estado de
// pago y de la venta, entradas de inventario y deuda. La comisión registrada no se toca.
// Cada intento queda auditado; los rechazados se guardan fuera de la transacción fallida.
func (s *Service) ProcessReturn(ctx context.Context, cmd ReturnCommand) (*entity.Sale, error) {
	now := s.now()
	audit := &entity.SaleReturn{
		ID:        uuid.New().String(),
		SaleID:    cmd.SaleID,
		Reason:    cmd.Reason,
		Status:    entity.ReturnStatusApplied,
		CreatedBy: cmd.UserID,
		CreatedAt: now,
	}
	for _, l := range cmd.Lines {
		audit.Lines = append(audit.Lines, entity.SaleReturnLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	if err := s.validate.Struct(cmd); err != nil {
		err = validation.Error(err, "")
		s.auditRejected(ctx, audit, err)
		return nil, err
	}

	var sale *entity.Sale
	var touchedStock bool
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
			return &domain.ConsistencyError{Reason: fmt.Sprintf("la venta en estado %s no admite devoluciones", sale.Status)}
		}

		requested, order, err := aggregateReturn(sale, cmd.Lines)
		if err != nil {
			return err
		}

		oldNet, oldPaid := sale.Net, sale.Paid
		applied := make([]entity.SaleReturnLine, 0, len(order))
		for _, id := range order {
			item := sale.Item(id)
			qty := requested[id]
			before := item.Total.Add(item.TaxAmount)
			item.ReturnedQuantity += qty
			domainsales.PriceItem(item, s.opts.Precision)
			amount := before.Sub(item.Total.Add(item.TaxAmount))
			if err := repos.Sales.UpdateItem(ctx, item); err != nil {
				return err
			}
			applied = append(applied, entity.SaleReturnLine{ItemID: id, ProductID: item.ProductID, Quantity: qty, Amount: amount})

			if !item.IsCatalog() {
				continue
			}
			unitCost := decimal.Zero
			if p, err := repos.Products.GetByID(ctx, item.ProductID); err != nil {
				return err
			} else if p != nil {
				unitCost = p.Cost
			}
			if _, err := s.ledger.Append(ctx, repos, inventory.Entry{
				ProductID:     item.ProductID,
				Direction:     entity.DirectionIn,
				Quantity:      qty,
				UnitCost:      unitCost,
				ReferenceType: entity.RefSaleReturn,
				ReferenceID:   audit.ID,
				Notes:         cmd.Reason,
				CreatedBy:     cmd.UserID,
			}, now); err != nil {
				return err
			}
			touchedStock = true
		}

		domainsales.Reprice(sale, s.opts.Precision)
		if sale.Paid.GreaterThan(sale.Net) {
			sale.Paid = sale.Net
		}
		sale.PaymentStatus = domainsales.PaymentStatus(sale.Paid, sale.Net)
		if sale.FullyReturned() {
			sale.Status = entity.SaleStatusReturned
		} else {
			sale.Status = entity.SaleStatusPartiallyReturned
		}
		sale.UpdatedAt = now
		if err := repos.Sales.Update(ctx, sale); err != nil {
			return err
		}
		if _, err := SyncDebt(ctx, repos.Debts, sale, now); err != nil {
			return err
		}

		audit.Lines = applied
		audit.Amount = oldNet.Sub(sale.Net)
		audit.RefundAmount = oldPaid.Sub(sale.Paid)
		return repos.Returns.Create(ctx, audit)
	})
	if err != nil {
		err = domain.AsPersistence("process return", err)
		s.auditRejected(ctx, audit, err)
		return nil, err
	}

	entities := []coherence.Entity{coherence.EntitySale, coherence.EntityDebt}
	if touchedStock {
		entities = append(entities, coherence.EntityProduct)
	}
	s.cache.InvalidateEntities(ctx, entities...)

	s.log.Info().Str("sale_id", sale.ID).Str("return_id", audit.ID).Str("amount", audit.Amount.String()).
		Str("refund", audit.RefundAmount.String()).Str("status", sale.Status).Msg("ventas: devolución aplicada")
	return sale, nil
}

// aggregateReturn suma cantidades por línea (la misma línea puede venir repetida) y valida rangos
// contra lo que queda por devolver. order conserva el orden de primera aparición.
func aggregateReturn(sale *entity.Sale, lines []ReturnLine) (map[string]int64, []string, error) {
	for _, l := range lines {
		if sale.Item(l.ItemID) == nil {
			return nil, nil, domain.NewNotFoundError("línea de venta", l.ItemID)
		}
	}
	requested := make(map[string]int64)
	var order []string
	for i, l := range lines {
		item := sale.Item(l.ItemID)
		if _, seen := requested[l.ItemID]; !seen {
			order = append(order, l.ItemID)
		}
		sum, ok := domainsales.AddQuantity(requested[l.ItemID], l.Quantity)
		if !ok {
			return nil, nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i),
				fmt.Sprintf("la cantidad total de la línea supera %d", domainsales.MaxQuantity))
		}
		if sum > item.RemainingQuantity() {
			return nil, nil, &domain.RangeError{ItemID: l.ItemID, Requested: sum, Remaining: item.RemainingQuantity()}
		}
		requested[l.ItemID] = sum
	}
	return requested, order, nil
}

// auditRejected guarda el intento rechazado; si falla solo se registra en el log.
func (s *Service) auditRejected(ctx context.Context, audit *entity.SaleReturn, cause error) {
	if audit.SaleID == "" {
		return
	}
	rejected := *audit
	rejected.Status = entity.ReturnStatusRejected
	rejected.Error = cause.Error()
	rejected.Amount = decimal.Zero
	rejected.RefundAmount = decimal.Zero
	if err := s.repos.Returns.Create(ctx, &rejected); err != nil {
		s.log.Error().Err(err).Str("sale_id", audit.SaleID).Msg("ventas: no se pudo auditar la devolución rechazada")
		return
	}
	s.cache.InvalidateFamilies(ctx, coherence.FamilySales)
	s.log.Warn().Err(cause).Str("sale_id", audit.SaleID).Str("return_id", audit.ID).Msg("ventas: devolución rechazada")
}
