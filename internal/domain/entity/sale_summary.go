package entity

import "github.com/shopspring/decimal"

// SaleSummary agregado de ventas de un período (consulta de solo lectura).
type SaleSummary struct {
	Count       int64
	NetTotal    decimal.Decimal
	PaidTotal   decimal.Decimal
	Outstanding decimal.Decimal
}
