// Package sqlstore implementa los repositorios del dominio con SQL portable entre PostgreSQL y SQLite.
// Cada motor aporta un adaptador (postgres, sqlite) que cumple DB/Tx y normaliza sus errores
// a ErrNoRows y ErrUniqueViolation; el SQL usa placeholders $N.
package sqlstore

import (
	"context"
	"errors"
)

var (
	// ErrNoRows la consulta de una fila no devolvió resultados.
	ErrNoRows = errors.New("sqlstore: sin filas")
	// ErrUniqueViolation se violó una restricción UNIQUE o PRIMARY KEY.
	ErrUniqueViolation = errors.New("sqlstore: violación de unicidad")
)

// Querier lo cumplen tanto la conexión como la transacción, así los repos sirven para ambos.
type Querier interface {
	// Exec devuelve las filas afectadas.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// Rows cursor de resultados.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Row resultado de una sola fila. Scan devuelve ErrNoRows si no hubo resultado.
type Row interface {
	Scan(dest ...any) error
}

// Tx transacción en curso.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB conexión o pool capaz de abrir transacciones.
type DB interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Dialect diferencias mínimas entre motores.
type Dialect struct {
	Name string
	// ForUpdate sufijo para bloquear filas leídas dentro de la transacción ("" si el motor no lo soporta).
	ForUpdate string
}

var (
	Postgres = Dialect{Name: "postgres", ForUpdate: " FOR UPDATE"}
	// SQLite serializa escritores con BEGIN IMMEDIATE; no hay bloqueo por fila.
	SQLite = Dialect{Name: "sqlite"}
)

// nullString guarda "" como NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
