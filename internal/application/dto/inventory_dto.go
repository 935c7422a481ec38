package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// type: purchase | opening | adjustment. En adjustment quantity lleva signo.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"`
	Quantity  int64            `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Reference string           `json:"reference,omitempty"`
}

// MovementResponse movimiento del libro de inventario.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Direction     string          `json:"direction"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockResponse stock materializado de un producto.
type StockResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
}

// ProjectionResponse resultado de recalcular el stock desde el libro.
type ProjectionResponse struct {
	ProductID string `json:"product_id"`
	Previous  int64  `json:"previous"`
	Projected int64  `json:"projected"`
	Drift     int64  `json:"drift"`
}
