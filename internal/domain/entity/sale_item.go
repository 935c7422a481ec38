package entity

import "github.com/shopspring/decimal"

// ItemKind discrimina la variante de la línea de venta.
type ItemKind string

const (
	// ItemKindCatalog línea ligada a un producto del catálogo; mueve inventario.
	ItemKindCatalog ItemKind = "catalog"
	// ItemKindManual entrada libre (descripción, precio, cantidad); nunca toca inventario.
	ItemKindManual ItemKind = "manual"
)

// Valid indica si el tipo es conocido.
func (k ItemKind) Valid() bool { return k == ItemKindCatalog || k == ItemKindManual }

// SaleItem línea de venta. ProductID solo aplica a ItemKindCatalog;
// DiscountPercent y TaxPercent son cero en líneas manuales.
type SaleItem struct {
	ID               string
	SaleID           string
	Line             int
	Kind             ItemKind
	ProductID        string
	Description      string
	Quantity         int64
	ReturnedQuantity int64
	UnitPrice        decimal.Decimal
	DiscountPercent  decimal.Decimal
	TaxPercent       decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal // cantidad efectiva * precio - descuento (sin impuesto)
}

// IsCatalog indica si la línea referencia un producto.
func (i *SaleItem) IsCatalog() bool { return i.Kind == ItemKindCatalog }

// RemainingQuantity unidades aún no devueltas.
func (i *SaleItem) RemainingQuantity() int64 { return i.Quantity - i.ReturnedQuantity }
