package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, name, tax_id, email, phone, balance, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el repositorio de clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullString(c.TaxID), c.Email, c.Phone, c.Balance, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func scanCustomer(row Row) (*entity.Customer, error) {
	var c entity.Customer
	var taxID *string
	if err := row.Scan(&c.ID, &c.Name, &taxID, &c.Email, &c.Phone, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.TaxID = deref(taxID)
	return &c, nil
}

func (r *CustomerRepo) getOne(ctx context.Context, where string, arg any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *CustomerRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error) {
	return r.getOne(ctx, "tax_id = $1", taxID)
}

func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza datos de contacto; el saldo solo cambia vía AddBalance.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	n, err := r.q.Exec(ctx,
		`UPDATE customers SET name = $2, tax_id = $3, email = $4, phone = $5, updated_at = $6 WHERE id = $1`,
		c.ID, c.Name, nullString(c.TaxID), c.Email, c.Phone, c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("cliente", c.ID)
	}
	return nil
}

// AddBalance suma amount al saldo a favor. Lee y escribe en la misma tx para no perder precisión
// en motores sin aritmética decimal nativa.
func (r *CustomerRepo) AddBalance(ctx context.Context, customerID string, amount decimal.Decimal) error {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT balance FROM customers WHERE id = $1`, customerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return domain.NewNotFoundError("cliente", customerID)
		}
		return fmt.Errorf("get customer balance: %w", err)
	}
	_, err = r.q.Exec(ctx, `UPDATE customers SET balance = $2, updated_at = $3 WHERE id = $1`,
		customerID, balance.Add(amount), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update customer balance: %w", err)
	}
	return nil
}
