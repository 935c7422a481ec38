package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.DebtRepository = (*DebtRepo)(nil)

const debtColumns = `id, sale_id, customer_id, amount, status, created_at, updated_at`

// DebtRepo implementación de DebtRepository. sale_id es UNIQUE.
type DebtRepo struct {
	q Querier
}

// NewDebtRepository construye el repositorio de deudas.
func NewDebtRepository(q Querier) *DebtRepo {
	return &DebtRepo{q: q}
}

func scanDebt(row Row) (*entity.Debt, error) {
	var d entity.Debt
	var customerID *string
	if err := row.Scan(&d.ID, &d.SaleID, &customerID, &d.Amount, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.CustomerID = deref(customerID)
	return &d, nil
}

func (r *DebtRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Debt, error) {
	d, err := scanDebt(r.q.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE sale_id = $1`, saleID))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

// Upsert crea o actualiza la deuda de la venta; conserva id y created_at de la fila existente.
func (r *DebtRepo) Upsert(ctx context.Context, d *entity.Debt) error {
	query := `
		INSERT INTO debts (` + debtColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sale_id) DO UPDATE SET amount = excluded.amount, status = excluded.status,
			customer_id = excluded.customer_id, updated_at = excluded.updated_at`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.SaleID, nullString(d.CustomerID), d.Amount, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert debt: %w", err)
	}
	return nil
}

func (r *DebtRepo) DeleteBySaleID(ctx context.Context, saleID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM debts WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return nil
}

func (r *DebtRepo) List(ctx context.Context, f repository.DebtFilter) ([]*entity.Debt, error) {
	var conds []string
	var args []any
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		conds = append(conds, "customer_id = $1")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM debts%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		debtColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
