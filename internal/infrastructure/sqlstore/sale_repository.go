package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const (
	saleColumns = `id, invoice_number, customer_id, delegate_id, cashier_id, idempotency_key, payment_method,
		subtotal, discount, tax, net, paid, payment_status, status, notes, created_at, updated_at`
	saleItemColumns = `id, sale_id, line, kind, product_id, description, quantity, returned_quantity,
		unit_price, discount_percent, tax_percent, discount_amount, tax_amount, total`
)

// SaleRepo implementación de SaleRepository: cabecera en sales, líneas en sale_items.
type SaleRepo struct {
	q Querier
	d Dialect
}

// NewSaleRepository construye el repositorio de ventas.
func NewSaleRepository(q Querier, d Dialect) *SaleRepo {
	return &SaleRepo{q: q, d: d}
}

// Create inserta cabecera y líneas. Una llave de idempotencia repetida devuelve domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.InvoiceNumber, nullString(s.CustomerID), nullString(s.DelegateID), s.CashierID,
		nullString(s.IdempotencyKey), s.PaymentMethod, s.Subtotal, s.Discount, s.Tax, s.Net, s.Paid,
		s.PaymentStatus, s.Status, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for _, it := range s.Items {
		if err := r.createItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepo) createItem(ctx context.Context, it *entity.SaleItem) error {
	query := `INSERT INTO sale_items (` + saleItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SaleID, it.Line, string(it.Kind), nullString(it.ProductID), it.Description,
		it.Quantity, it.ReturnedQuantity, it.UnitPrice, it.DiscountPercent, it.TaxPercent,
		it.DiscountAmount, it.TaxAmount, it.Total,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

func scanSale(row Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, delegateID, idemKey *string
	err := row.Scan(&s.ID, &s.InvoiceNumber, &customerID, &delegateID, &s.CashierID, &idemKey,
		&s.PaymentMethod, &s.Subtotal, &s.Discount, &s.Tax, &s.Net, &s.Paid, &s.PaymentStatus,
		&s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.CustomerID = deref(customerID)
	s.DelegateID = deref(delegateID)
	s.IdempotencyKey = deref(idemKey)
	return &s, nil
}

func (r *SaleRepo) items(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY line`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		var kind string
		var productID *string
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Line, &kind, &productID, &it.Description,
			&it.Quantity, &it.ReturnedQuantity, &it.UnitPrice, &it.DiscountPercent, &it.TaxPercent,
			&it.DiscountAmount, &it.TaxAmount, &it.Total); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		it.Kind = entity.ItemKind(kind)
		it.ProductID = deref(productID)
		list = append(list, &it)
	}
	return list, rows.Err()
}

// getWithItems carga cabecera + líneas. Las líneas se leen después de cerrar la fila de cabecera.
func (r *SaleRepo) getWithItems(ctx context.Context, op, where string, arg any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.Items, err = r.items(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getWithItems(ctx, "get sale", "id = $1", id)
}

// GetForUpdate bloquea la cabecera; las líneas solo se modifican con la cabecera bloqueada.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getWithItems(ctx, "get sale for update", "id = $1"+r.d.ForUpdate, id)
}

func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	return r.getWithItems(ctx, "get sale by idempotency key", "idempotency_key = $1", key)
}

// FindRecent compara el neto en Go: SQLite guarda los montos como texto.
func (r *SaleRepo) FindRecent(ctx context.Context, customerID string, net decimal.Decimal, since time.Time) (*entity.Sale, error) {
	if customerID == "" {
		return nil, nil
	}
	query := `SELECT ` + saleColumns + ` FROM sales
		WHERE created_at >= $1 AND status <> $2 AND customer_id = $3
		ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, since, entity.SaleStatusCancelled, customerID)
	if err != nil {
		return nil, fmt.Errorf("find recent sale: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if s.Net.Equal(net) {
			return s, nil
		}
	}
	return nil, rows.Err()
}

// Update actualiza totales, pagado y estados.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET subtotal = $2, discount = $3, tax = $4, net = $5, paid = $6,
			payment_status = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1`
	n, err := r.q.Exec(ctx, query,
		s.ID, s.Subtotal, s.Discount, s.Tax, s.Net, s.Paid, s.PaymentStatus, s.Status, s.Notes, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("venta", s.ID)
	}
	return nil
}

// UpdateItem actualiza cantidad devuelta y montos derivados de la línea.
func (r *SaleRepo) UpdateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		UPDATE sale_items SET returned_quantity = $2, discount_amount = $3, tax_amount = $4, total = $5
		WHERE id = $1`
	n, err := r.q.Exec(ctx, query, it.ID, it.ReturnedQuantity, it.DiscountAmount, it.TaxAmount, it.Total)
	if err != nil {
		return fmt.Errorf("update sale item: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("línea de venta", it.ID)
	}
	return nil
}

func saleFilterWhere(f repository.SaleFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.From != nil {
		add("created_at >= $%d", f.From.UTC())
	}
	if f.To != nil {
		add("created_at < $%d", f.To.UTC())
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List devuelve cabeceras sin líneas, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	where, args := saleFilterWhere(f)
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM sales%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		saleColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Summarize agrega en Go para no depender de la aritmética decimal del motor.
// Las ventas anuladas no cuentan.
func (r *SaleRepo) Summarize(ctx context.Context, from, to time.Time) (*entity.SaleSummary, error) {
	rows, err := r.q.Query(ctx,
		`SELECT net, paid FROM sales WHERE created_at >= $1 AND created_at < $2 AND status <> $3`,
		from.UTC(), to.UTC(), entity.SaleStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("summarize sales: %w", err)
	}
	defer rows.Close()
	sum := &entity.SaleSummary{NetTotal: decimal.Zero, PaidTotal: decimal.Zero, Outstanding: decimal.Zero}
	for rows.Next() {
		var net, paid decimal.Decimal
		if err := rows.Scan(&net, &paid); err != nil {
			return nil, fmt.Errorf("scan sale totals: %w", err)
		}
		sum.Count++
		sum.NetTotal = sum.NetTotal.Add(net)
		sum.PaidTotal = sum.PaidTotal.Add(paid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sum.Outstanding = sum.NetTotal.Sub(sum.PaidTotal)
	return sum, nil
}
