package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea del body de POST /api/sales.
// kind: catalog (product_id, descuento e impuesto) | manual (description, nunca toca inventario).
type SaleLineRequest struct {
	Kind            string          `json:"kind"`
	ProductID       string          `json:"product_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
}

// CreateSaleRequest body de POST /api/sales. La llave de idempotencia también puede ir en el
// header Idempotency-Key.
type CreateSaleRequest struct {
	CustomerID     string            `json:"customer_id,omitempty"`
	DelegateID     string            `json:"delegate_id,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	PaymentMethod  string            `json:"payment_method"`
	Paid           decimal.Decimal   `json:"paid"`
	Discount       decimal.Decimal   `json:"discount"`
	Notes          string            `json:"notes,omitempty"`
	Lines          []SaleLineRequest `json:"lines"`
}

// ReturnLineRequest unidades a devolver de una línea.
type ReturnLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// ReturnRequest body de POST /api/sales/:id/returns.
type ReturnRequest struct {
	Lines  []ReturnLineRequest `json:"lines"`
	Reason string              `json:"reason"`
}

// PaymentRequest body de POST /api/sales/:id/payments.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID               string          `json:"id"`
	Line             int             `json:"line"`
	Kind             string          `json:"kind"`
	ProductID        string          `json:"product_id,omitempty"`
	Description      string          `json:"description,omitempty"`
	Quantity         int64           `json:"quantity"`
	ReturnedQuantity int64           `json:"returned_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	TaxPercent       decimal.Decimal `json:"tax_percent"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
}

// SaleResponse venta con sus líneas (las listas omiten las líneas).
type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    string             `json:"customer_id,omitempty"`
	DelegateID    string             `json:"delegate_id,omitempty"`
	CashierID     string             `json:"cashier_id,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	Net           decimal.Decimal    `json:"net"`
	Paid          decimal.Decimal    `json:"paid"`
	Remaining     decimal.Decimal    `json:"remaining"`
	PaymentStatus string             `json:"payment_status"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// DebtResponse deuda abierta de una venta.
type DebtResponse struct {
	ID         string          `json:"id"`
	SaleID     string          `json:"sale_id"`
	CustomerID string          `json:"customer_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SaleSummaryResponse agregado del período consultado.
type SaleSummaryResponse struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Count       int64           `json:"count"`
	NetTotal    decimal.Decimal `json:"net_total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// ReturnLineResponse línea auditada de una devolución.
type ReturnLineResponse struct {
	ItemID    string          `json:"item_id"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReturnResponse registro de auditoría de una devolución.
type ReturnResponse struct {
	ID           string               `json:"id"`
	SaleID       string               `json:"sale_id"`
	Status       string               `json:"status"`
	Reason       string               `json:"reason,omitempty"`
	Error        string               `json:"error,omitempty"`
	Amount       decimal.Decimal      `json:"amount"`
	RefundAmount decimal.Decimal      `json:"refund_amount"`
	Lines        []ReturnLineResponse `json:"lines"`
	CreatedBy    string               `json:"created_by,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}
