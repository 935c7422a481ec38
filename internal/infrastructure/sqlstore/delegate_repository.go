package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.DelegateRepository = (*DelegateRepo)(nil)

const delegateColumns = `id, name, phone, commission_type, commission_rate, fixed_amount, active, created_at, updated_at`

// DelegateRepo implementación de DelegateRepository.
type DelegateRepo struct {
	q Querier
}

// NewDelegateRepository construye el repositorio de representantes.
func NewDelegateRepository(q Querier) *DelegateRepo {
	return &DelegateRepo{q: q}
}

func (r *DelegateRepo) Create(ctx context.Context, d *entity.Delegate) error {
	_, err := r.q.Exec(ctx, `INSERT INTO delegates (`+delegateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Name, d.Phone, d.CommissionType, d.CommissionRate, d.FixedAmount, d.Active, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert delegate: %w", err)
	}
	return nil
}

func scanDelegate(row Row) (*entity.Delegate, error) {
	var d entity.Delegate
	if err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.CommissionType, &d.CommissionRate, &d.FixedAmount,
		&d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DelegateRepo) GetByID(ctx context.Context, id string) (*entity.Delegate, error) {
	d, err := scanDelegate(r.q.QueryRow(ctx, `SELECT `+delegateColumns+` FROM delegates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delegate: %w", err)
	}
	return d, nil
}

// Update cambia la política vigente; las comisiones ya registradas guardan su propia foto.
func (r *DelegateRepo) Update(ctx context.Context, d *entity.Delegate) error {
	n, err := r.q.Exec(ctx, `
		UPDATE delegates SET name = $2, phone = $3, commission_type = $4, commission_rate = $5,
			fixed_amount = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		d.ID, d.Name, d.Phone, d.CommissionType, d.CommissionRate, d.FixedAmount, d.Active, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update delegate: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("representante", d.ID)
	}
	return nil
}

func (r *DelegateRepo) List(ctx context.Context, limit, offset int) ([]*entity.Delegate, error) {
	rows, err := r.q.Query(ctx, `SELECT `+delegateColumns+` FROM delegates ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list delegates: %w", err)
	}
	defer rows.Close()
	var list []*entity.Delegate
	for rows.Next() {
		d, err := scanDelegate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delegate: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
