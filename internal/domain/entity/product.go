package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo.
// CurrentStock es una proyección materializada de stock_movements; solo la modifica el libro de inventario.
type Product struct {
	ID           string
	SKU          string
	Barcode      string
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta sugerido
	Cost         decimal.Decimal // costo promedio ponderado (inicia en 0)
	TaxRate      decimal.Decimal // porcentaje 0..100
	CurrentStock int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
