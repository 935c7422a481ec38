package sqlstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, direction, quantity, unit_cost, reference_type, reference_id, notes, created_by, created_at`

// StockMovementRepo libro append-only: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el repositorio del libro de inventario.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Direction, m.Quantity, m.UnitCost, m.ReferenceType, m.ReferenceID,
		m.Notes, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// SumByProduct Σ cantidades con signo. El CAST evita que PostgreSQL devuelva NUMERIC.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	query := `
		SELECT CAST(COALESCE(SUM(CASE WHEN direction = 'out' THEN -quantity ELSE quantity END), 0) AS BIGINT)
		FROM stock_movements WHERE product_id = $1`
	var total int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum stock movements: %w", err)
	}
	return total, nil
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Quantity, &m.UnitCost, &m.ReferenceType,
			&m.ReferenceID, &m.Notes, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1
		ORDER BY created_at, id LIMIT $2 OFFSET $3`, productID, limit, offset)
}

func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`, referenceType, referenceID)
}
