package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una venta.
const (
	SaleStatusPending           = "pending"
	SaleStatusCompleted         = "completed"
	SaleStatusCancelled         = "cancelled"
	SaleStatusReturned          = "returned"
	SaleStatusPartiallyReturned = "partially_returned"
)

// Estados de pago.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Medios de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCredit   = "credit"
)

// PaymentMethods lista cerrada de medios de pago.
var PaymentMethods = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCredit}

// Sale cabecera de venta con sus líneas.
// CustomerID vacío representa al cliente anónimo (mostrador).
type Sale struct {
	ID             string
	InvoiceNumber  string
	CustomerID     string
	DelegateID     string
	CashierID      string
	IdempotencyKey string
	PaymentMethod  string
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Tax            decimal.Decimal
	Net            decimal.Decimal
	Paid           decimal.Decimal
	PaymentStatus  string
	Status         string
	Notes          string
	Items          []*SaleItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsAnonymous indica si la venta no tiene cliente asociado.
func (s *Sale) IsAnonymous() bool { return s.CustomerID == "" }

// HasDelegate indica si la venta tiene un representante comercial.
func (s *Sale) HasDelegate() bool { return s.DelegateID != "" }

// Remaining saldo pendiente (Net - Paid); puede ser negativo.
func (s *Sale) Remaining() decimal.Decimal { return s.Net.Sub(s.Paid) }

// Returnable indica si el estado permite devoluciones.
func (s *Sale) Returnable() bool {
	return s.Status == SaleStatusCompleted || s.Status == SaleStatusPartiallyReturned
}

// Item busca una línea por ID.
func (s *Sale) Item(id string) *SaleItem {
	for _, it := range s.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// FullyReturned indica si todas las líneas fueron devueltas por completo.
func (s *Sale) FullyReturned() bool {
	if len(s.Items) == 0 {
		return false
	}
	for _, it := range s.Items {
		if it.RemainingQuantity() > 0 {
			return false
		}
	}
	return true
}
