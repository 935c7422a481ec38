// Package sales contiene el cálculo puro de totales, estado de pago y deuda de una venta.
// No conoce la persistencia: los casos de uso de application/sales lo invocan dentro de la transacción.
package sales

import (
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultPrecision decimales de la moneda.
const DefaultPrecision int32 = 2

// MaxQuantity tope de unidades por línea y por producto dentro de una venta o devolución.
// Las etiquetas validate de los comandos repiten este valor.
const MaxQuantity int64 = 1_000_000_000

// AddQuantity suma dos cantidades no negativas; ok es false si el resultado supera MaxQuantity.
func AddQuantity(a, b int64) (sum int64, ok bool) {
	if a < 0 || b < 0 || a > MaxQuantity || b > MaxQuantity-a {
		return 0, false
	}
	return a + b, true
}

var hundred = decimal.NewFromInt(100)

// Totals totales de cabecera.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Net      decimal.Decimal
}

// Epsilon tolerancia de redondeo para la precisión dada.
func Epsilon(precision int32) decimal.Decimal {
	return decimal.New(1, -precision)
}

// PriceItem recalcula DiscountAmount, TaxAmount y Total de la línea sobre la cantidad efectiva
// (Quantity - ReturnedQuantity). Las líneas manuales no llevan descuento ni impuesto.
func PriceItem(item *entity.SaleItem, precision int32) {
	qty := decimal.NewFromInt(item.RemainingQuantity())
	gross := qty.Mul(item.UnitPrice).Round(precision)
	discount := decimal.Zero
	tax := decimal.Zero
	if item.IsCatalog() {
		discount = gross.Mul(item.DiscountPercent).Div(hundred).Round(precision)
		tax = gross.Sub(discount).Mul(item.TaxPercent).Div(hundred).Round(precision)
	}
	item.DiscountAmount = discount
	item.TaxAmount = tax
	item.Total = gross.Sub(discount)
}

// ComputeTotals suma las líneas ya valoradas y aplica el descuento de cabecera,
// que nunca supera el subtotal.
// Net = Σ(total de línea) - descuento + impuesto.
func ComputeTotals(items []*entity.SaleItem, saleDiscount decimal.Decimal, precision int32) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
		tax = tax.Add(it.TaxAmount)
	}
	discount := saleDiscount.Round(precision)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Net:      subtotal.Sub(discount).Add(tax).Round(precision),
	}
}

// Reprice valora todas las líneas de la venta y actualiza sus totales de cabecera.
func Reprice(sale *entity.Sale, precision int32) {
	for _, it := range sale.Items {
		PriceItem(it, precision)
	}
	t := ComputeTotals(sale.Items, sale.Discount, precision)
	sale.Subtotal = t.Subtotal
	sale.Discount = t.Discount
	sale.Tax = t.Tax
	sale.Net = t.Net
}

// PaymentStatus deriva el estado de pago de la relación pagado/neto.
func PaymentStatus(paid, net decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(net):
		return entity.PaymentStatusPaid
	case paid.IsPositive():
		return entity.PaymentStatusPartial
	default:
		return entity.PaymentStatusUnpaid
	}
}

// ApplyPayment fija lo pagado (acotado al neto) y devuelve el excedente no aplicado.
func ApplyPayment(sale *entity.Sale, paid decimal.Decimal) (excess decimal.Decimal) {
	excess = decimal.Zero
	if paid.GreaterThan(sale.Net) {
		excess = paid.Sub(sale.Net)
		paid = sale.Net
	}
	sale.Paid = paid
	sale.PaymentStatus = PaymentStatus(sale.Paid, sale.Net)
	return excess
}

// NetConsistent verifica el invariante de cabecera contra las líneas dentro del épsilon.
func NetConsistent(sale *entity.Sale, precision int32) bool {
	sum := decimal.Zero
	for _, it := range sale.Items {
		sum = sum.Add(it.Total)
	}
	expected := sum.Sub(sale.Discount).Add(sale.Tax)
	return expected.Sub(sale.Net).Abs().LessThanOrEqual(Epsilon(precision))
}
