package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleFilter filtros para listar ventas.
type SaleFilter struct {
	CustomerID string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// Create persiste cabecera y líneas (sale.Items).
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate carga la venta con sus líneas bloqueando la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	// FindRecent busca la venta más reciente del cliente con el mismo neto desde since.
	// Con customerID vacío no hay cliente que comparar y devuelve (nil, nil).
	FindRecent(ctx context.Context, customerID string, net decimal.Decimal, since time.Time) (*entity.Sale, error)
	// Update actualiza totales, pagado y estados de la cabecera.
	Update(ctx context.Context, sale *entity.Sale) error
	// UpdateItem actualiza cantidad devuelta y montos de una línea.
	UpdateItem(ctx context.Context, item *entity.SaleItem) error
	// List devuelve cabeceras (sin líneas) ordenadas por fecha descendente.
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	Summarize(ctx context.Context, from, to time.Time) (*entity.SaleSummary, error)
}
