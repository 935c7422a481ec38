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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, barcode, name, description, price, cost, tax_rate, current_stock, created_at, updated_at`

// ProductRepo implementación de ProductRepository (usable con pool o tx).
type ProductRepo struct {
	q Querier
	d Dialect
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier, d Dialect) *ProductRepo {
	return &ProductRepo{q: q, d: d}
}

// Create persiste un nuevo producto. El stock arranca en 0: solo lo mueve el libro de inventario.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, nullString(p.Barcode), p.Name, p.Description,
		p.Price, p.Cost, p.TaxRate, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.CurrentStock = 0
	return nil
}

func scanProduct(row Row) (*entity.Product, error) {
	var p entity.Product
	var barcode *string
	err := row.Scan(&p.ID, &p.SKU, &barcode, &p.Name, &p.Description, &p.Price, &p.Cost,
		&p.TaxRate, &p.CurrentStock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Barcode = deref(barcode)
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", "id = $1", id)
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by barcode", "barcode = $1", barcode)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", "sku = $1", sku)
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE en PostgreSQL) hasta el fin de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update", "id = $1"+r.d.ForUpdate, id)
}

// Update actualiza datos de catálogo. No toca Cost ni CurrentStock (se manejan vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, barcode = $3, name = $4, description = $5, price = $6, tax_rate = $7, updated_at = $8
		WHERE id = $1`
	n, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, nullString(p.Barcode), p.Name, p.Description, p.Price, p.TaxRate, p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("producto", p.ID)
	}
	return nil
}

// UpdateCost actualiza solo el costo promedio (usado por el motor de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET cost = $2, updated_at = $3 WHERE id = $1`,
		productID, cost, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// List lista productos con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListIDs todos los IDs (para la reconciliación).
func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AdjustStock aplica el delta con signo al valor materializado.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID string, delta int64) error {
	n, err := r.q.Exec(ctx,
		`UPDATE products SET current_stock = current_stock + $2, updated_at = $3 WHERE id = $1`,
		productID, delta, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("producto", productID)
	}
	return nil
}

// SetStock fija el valor materializado (reconciliación).
func (r *ProductRepo) SetStock(ctx context.Context, productID string, quantity int64) error {
	n, err := r.q.Exec(ctx,
		`UPDATE products SET current_stock = $2, updated_at = $3 WHERE id = $1`,
		productID, quantity, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("producto", productID)
	}
	return nil
}
