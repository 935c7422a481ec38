// Package sqlite almacén embebido por defecto: un único archivo, un solo escritor a la vez.
//
// Se abre en modo WAL con BEGIN IMMEDIATE para que las transacciones de venta se serialicen
// en la ruta de escritura del motor. El esquema se migra al abrir. Usar ":memory:" en tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlstore"
)

var (
	_ sqlstore.DB = (*DB)(nil)
	_ sqlstore.Tx = (*Tx)(nil)
)

// placeholder $N de PostgreSQL; SQLite lo interpreta como nombre, así que se reescribe a ?N.
var placeholder = regexp.MustCompile(`\$(\d+)`)

func rebind(query string) string {
	return placeholder.ReplaceAllString(query, "?$1")
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	q querier
}

func (c conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.q.ExecContext(ctx, rebind(query), args...)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

func (c conn) Query(ctx context.Context, query string, args ...any) (sqlstore.Rows, error) {
	rows, err := c.q.QueryContext(ctx, rebind(query), args...)
	if err != nil {
		return nil, mapError(err)
	}
	return sqlRows{rows}, nil
}

func (c conn) QueryRow(ctx context.Context, query string, args ...any) sqlstore.Row {
	return sqlRow{c.q.QueryRowContext(ctx, rebind(query), args...)}
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }

type sqlRow struct {
	r *sql.Row
}

func (r sqlRow) Scan(dest ...any) error {
	if err := r.r.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sqlstore.ErrNoRows
		}
		return mapError(err)
	}
	return nil
}

// DB base SQLite vista como sqlstore.DB.
type DB struct {
	conn
	db *sql.DB
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Un solo escritor; además mantiene viva la base cuando es ":memory:".
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &DB{conn: conn{q: db}, db: db}, nil
}

func (d *DB) Begin(ctx context.Context) (sqlstore.Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{conn: conn{q: tx}, tx: tx}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Tx transacción SQLite.
type Tx struct {
	conn
	tx *sql.Tx
}

func (t *Tx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *Tx) Rollback(context.Context) error { return t.tx.Rollback() }

func mapError(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", sqlstore.ErrUniqueViolation, err)
	}
	return err
}
