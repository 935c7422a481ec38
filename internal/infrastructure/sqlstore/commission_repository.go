package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.CommissionRepository = (*CommissionRepo)(nil)

const commissionColumns = `id, sale_id, delegate_id, commission_type, rate, base_amount, amount, created_at`

// CommissionRepo comisiones inmutables: no existe UPDATE.
type CommissionRepo struct {
	q Querier
}

// NewCommissionRepository construye el repositorio de comisiones.
func NewCommissionRepository(q Querier) *CommissionRepo {
	return &CommissionRepo{q: q}
}

// Create inserta la comisión; (sale_id, delegate_id) repetido devuelve domain.ErrDuplicate.
func (r *CommissionRepo) Create(ctx context.Context, c *entity.Commission) error {
	_, err := r.q.Exec(ctx, `INSERT INTO commissions (`+commissionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.SaleID, c.DelegateID, c.CommissionType, c.Rate, c.BaseAmount, c.Amount, c.CreatedAt)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert commission: %w", err)
	}
	return nil
}

func scanCommission(row Row) (*entity.Commission, error) {
	var c entity.Commission
	if err := row.Scan(&c.ID, &c.SaleID, &c.DelegateID, &c.CommissionType, &c.Rate, &c.BaseAmount, &c.Amount, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommissionRepo) GetBySaleAndDelegate(ctx context.Context, saleID, delegateID string) (*entity.Commission, error) {
	c, err := scanCommission(r.q.QueryRow(ctx,
		`SELECT `+commissionColumns+` FROM commissions WHERE sale_id = $1 AND delegate_id = $2`, saleID, delegateID))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commission: %w", err)
	}
	return c, nil
}

func (r *CommissionRepo) ListByDelegate(ctx context.Context, delegateID string, limit, offset int) ([]*entity.Commission, error) {
	rows, err := r.q.Query(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE delegate_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, delegateID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
