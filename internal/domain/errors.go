package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias de infraestructura).
// Los errores tipados de abajo envuelven a estos sentinelas para que los handlers
// puedan usar errors.Is sin conocer el detalle.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrPersistence       = errors.New("error de persistencia")
)

// ValidationError entrada mal formada; no se escribió nada.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validación: %s", e.Reason)
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DuplicateSaleError la venta ya fue registrada (misma llave de idempotencia o
// mismo cliente y mismo total dentro de la ventana de duplicados).
type DuplicateSaleError struct {
	ExistingSaleID string
	Reason         string
}

func (e *DuplicateSaleError) Error() string {
	return fmt.Sprintf("venta duplicada (%s): venta existente %s", e.Reason, e.ExistingSaleID)
}

func (e *DuplicateSaleError) Unwrap() error { return ErrDuplicate }

// InsufficientStockError la cantidad pedida supera el stock materializado.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NotFoundError venta, producto, cliente o delegado inexistente.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError atajo para construir un NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConsistencyError la operación violaría un invariante (p. ej. devolver una venta anulada).
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string { return "consistencia: " + e.Reason }

func (e *ConsistencyError) Unwrap() error { return ErrConflict }

// RangeError se intentó devolver más unidades de las que quedan en la línea.
// Es un caso particular de ConsistencyError (errors.Is(err, ErrConflict) es true).
type RangeError struct {
	ItemID    string
	Requested int64
	Remaining int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("devolución fuera de rango en línea %s: solicitado %d, restante %d",
		e.ItemID, e.Requested, e.Remaining)
}

func (e *RangeError) Unwrap() error { return ErrConflict }

// PersistenceError falla del almacenamiento subyacente.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// AsPersistence envuelve err como PersistenceError salvo que ya sea un error de dominio.
// Se usa al salir de un TxRunner para no degradar errores de negocio.
func AsPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrConflict, ErrInsufficientStock, ErrPersistence, ErrForbidden} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &PersistenceError{Op: op, Err: err}
}
