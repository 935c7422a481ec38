package sqlstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// NewRepos construye todos los repositorios sobre q (pool o tx).
func NewRepos(q Querier, d Dialect) repository.Repos {
	return repository.Repos{
		Products:    NewProductRepository(q, d),
		Customers:   NewCustomerRepository(q),
		Movements:   NewStockMovementRepository(q),
		Sales:       NewSaleRepository(q, d),
		Debts:       NewDebtRepository(q),
		Commissions: NewCommissionRepository(q),
		Delegates:   NewDelegateRepository(q),
		Returns:     NewSaleReturnRepository(q),
	}
}

// TxRunner ejecuta callbacks dentro de una transacción del motor configurado.
type TxRunner struct {
	db      DB
	dialect Dialect
}

// NewTxRunner construye el runner con la conexión.
func NewTxRunner(db DB, d Dialect) *TxRunner {
	return &TxRunner{db: db, dialect: d}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx, r.dialect)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
