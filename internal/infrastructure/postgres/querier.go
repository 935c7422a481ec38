package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlstore"
)

var (
	_ sqlstore.DB = (*DB)(nil)
	_ sqlstore.Tx = (*Tx)(nil)
)

// Querier lo cumplen *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn adapta un Querier de pgx al contrato de sqlstore.
type conn struct {
	q Querier
}

func (c conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (c conn) Query(ctx context.Context, query string, args ...any) (sqlstore.Rows, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

func (c conn) QueryRow(ctx context.Context, query string, args ...any) sqlstore.Row {
	return row{r: c.q.QueryRow(ctx, query, args...)}
}

type row struct {
	r pgx.Row
}

func (r row) Scan(dest ...any) error {
	if err := r.r.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlstore.ErrNoRows
		}
		return mapError(err)
	}
	return nil
}

// DB pool de PostgreSQL visto como sqlstore.DB.
type DB struct {
	conn
	pool *pgxpool.Pool
}

// NewDB envuelve el pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{conn: conn{q: pool}, pool: pool}
}

// Begin abre una transacción (READ COMMITTED; los SELECT FOR UPDATE serializan las escrituras).
func (d *DB) Begin(ctx context.Context) (sqlstore.Tx, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{conn: conn{q: tx}, tx: tx}, nil
}

func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

// Tx transacción pgx vista como sqlstore.Tx.
type Tx struct {
	conn
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *Tx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// uniqueViolation código SQLSTATE de violación de UNIQUE/PRIMARY KEY.
const uniqueViolation = "23505"

// mapError traduce violaciones de unicidad al error común de sqlstore.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s (%s)", sqlstore.ErrUniqueViolation, pgErr.ConstraintName, pgErr.Detail)
	}
	return err
}
