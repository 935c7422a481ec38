package http

import (
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		DelegateID:    s.DelegateID,
		CashierID:     s.CashierID,
		PaymentMethod: s.PaymentMethod,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Tax:           s.Tax,
		Net:           s.Net,
		Paid:          s.Paid,
		Remaining:     s.Remaining(),
		PaymentStatus: s.PaymentStatus,
		Status:        s.Status,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:               it.ID,
			Line:             it.Line,
			Kind:             string(it.Kind),
			ProductID:        it.ProductID,
			Description:      it.Description,
			Quantity:         it.Quantity,
			ReturnedQuantity: it.ReturnedQuantity,
			UnitPrice:        it.UnitPrice,
			DiscountPercent:  it.DiscountPercent,
			TaxPercent:       it.TaxPercent,
			DiscountAmount:   it.DiscountAmount,
			TaxAmount:        it.TaxAmount,
			Total:            it.Total,
		})
	}
	return out
}

func toDebtResponse(d *entity.Debt) dto.DebtResponse {
	return dto.DebtResponse{
		ID:         d.ID,
		SaleID:     d.SaleID,
		CustomerID: d.CustomerID,
		Amount:     d.Amount,
		Status:     d.Status,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toReturnResponse(r *entity.SaleReturn) dto.ReturnResponse {
	out := dto.ReturnResponse{
		ID:           r.ID,
		SaleID:       r.SaleID,
		Status:       r.Status,
		Reason:       r.Reason,
		Error:        r.Error,
		Amount:       r.Amount,
		RefundAmount: r.RefundAmount,
		Lines:        make([]dto.ReturnLineResponse, 0, len(r.Lines)),
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.ReturnLineResponse{ItemID: l.ItemID, ProductID: l.ProductID, Quantity: l.Quantity, Amount: l.Amount})
	}
	return out
}

func toCommissionResponse(c *entity.Commission) dto.CommissionResponse {
	return dto.CommissionResponse{
		ID:             c.ID,
		SaleID:         c.SaleID,
		DelegateID:     c.DelegateID,
		CommissionType: c.CommissionType,
		Rate:           c.Rate,
		BaseAmount:     c.BaseAmount,
		Amount:         c.Amount,
		CreatedAt:      c.CreatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

func toProjectionResponse(p inventory.Projection) dto.ProjectionResponse {
	return dto.ProjectionResponse{ProductID: p.ProductID, Previous: p.Previous, Projected: p.Projected, Drift: p.Drift()}
}
