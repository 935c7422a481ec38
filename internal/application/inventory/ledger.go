package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Entry movimiento a asentar en el libro.
type Entry struct {
	ProductID     string
	Direction     string
	Quantity      int64
	UnitCost      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string
}

// Projection resultado de recalcular el stock de un producto desde el libro.
type Projection struct {
	ProductID string `json:"product_id"`
	Previous  int64  `json:"previous"`
	Projected int64  `json:"projected"`
}

// Drift diferencia entre lo materializado y lo que dice el libro.
func (p Projection) Drift() int64 { return p.Previous - p.Projected }

// ReconcileReport resultado de revisar todos los productos.
type ReconcileReport struct {
	Checked  int          `json:"checked"`
	Drifted  []Projection `json:"drifted"`
	Repaired bool         `json:"repaired"`
}

// Ledger libro de movimientos de inventario (append-only) y proyección del stock materializado.
type Ledger struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	cache    *coherence.Layer
	log      *logger.Logger
}

// NewLedger construye el libro. repos son los repositorios del pool (lecturas fuera de tx).
func NewLedger(txRunner ports.TxRunner, repos repository.Repos, cache *coherence.Layer, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{txRunner: txRunner, repos: repos, cache: cache, log: log}
}

// Append escribe el movimiento y aplica el delta al stock materializado, ambos con los repos
// de la transacción del llamador. No valida stock suficiente: eso es responsabilidad del llamador.
func (l *Ledger) Append(ctx context.Context, repos repository.Repos, e Entry, at time.Time) (*entity.StockMovement, error) {
	if e.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if !inventory.ValidDirection(e.Direction) {
		return nil, domain.NewValidationError("direction", "debe ser in u out")
	}
	if e.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     e.ProductID,
		Direction:     e.Direction,
		Quantity:      e.Quantity,
		UnitCost:      e.UnitCost,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     at,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.AdjustStock(ctx, e.ProductID, mov.Signed()); err != nil {
		return nil, err
	}
	return mov, nil
}

// ProjectCurrentStock recalcula el stock como Σ movimientos con signo y lo persiste si difiere.
func (l *Ledger) ProjectCurrentStock(ctx context.Context, productID string) (*Projection, error) {
	var proj *Projection
	err := l.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		proj, err = project(ctx, repos, productID, true)
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("project stock", err)
	}
	if proj.Drift() != 0 {
		l.log.Warn().Str("product_id", productID).Int64("previous", proj.Previous).
			Int64("projected", proj.Projected).Msg("inventario: stock materializado corregido")
		l.cache.InvalidateEntities(ctx, coherence.EntityProduct)
	}
	return proj, nil
}

func project(ctx context.Context, repos repository.Repos, productID string, repair bool) (*Projection, error) {
	var product *entity.Product
	var err error
	if repair {
		product, err = repos.Products.GetForUpdate(ctx, productID)
	} else {
		product, err = repos.Products.GetByID(ctx, productID)
	}
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", productID)
	}
	sum, err := repos.Movements.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	proj := &Projection{ProductID: productID, Previous: product.CurrentStock, Projected: sum}
	if repair && proj.Drift() != 0 {
		if err := repos.Products.SetStock(ctx, productID, sum); err != nil {
			return nil, err
		}
	}
	return proj, nil
}

// GetCurrentStock valor materializado (cacheado en la familia stock).
func (l *Ledger) GetCurrentStock(ctx context.Context, productID string) (int64, error) {
	return coherence.GetOrLoad(ctx, l.cache, coherence.FamilyStock, coherence.KindLookup, "current", []any{productID},
		func(ctx context.Context) (int64, error) {
			p, err := l.repos.Products.GetByID(ctx, productID)
			if err != nil {
				return 0, domain.AsPersistence("get stock", err)
			}
			if p == nil {
				return 0, domain.NewNotFoundError("producto", productID)
			}
			return p.CurrentStock, nil
		})
}

// Reconcile revisa todos los productos contra el libro. Con repair corrige cada desvío en su propia tx.
func (l *Ledger) Reconcile(ctx context.Context, repair bool) (*ReconcileReport, error) {
	ids, err := l.repos.Products.ListIDs(ctx)
	if err != nil {
		return nil, domain.AsPersistence("list products", err)
	}
	report := &ReconcileReport{Repaired: repair}
	for _, id := range ids {
		proj, err := project(ctx, l.repos, id, false)
		if err != nil {
			return report, fmt.Errorf("reconcile %s: %w", id, domain.AsPersistence("project stock", err))
		}
		report.Checked++
		if proj.Drift() == 0 {
			continue
		}
		if repair {
			if proj, err = l.ProjectCurrentStock(ctx, id); err != nil {
				return report, fmt.Errorf("repair %s: %w", id, err)
			}
		}
		report.Drifted = append(report.Drifted, *proj)
	}
	l.log.Info().Int("checked", report.Checked).Int("drifted", len(report.Drifted)).
		Bool("repair", repair).Msg("inventario: reconciliación terminada")
	return report, nil
}

// ListMovements movimientos del producto en orden cronológico.
func (l *Ledger) ListMovements(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return coherence.GetOrLoad(ctx, l.cache, coherence.FamilyStock, coherence.KindList, "movements", []any{productID, limit, offset},
		func(ctx context.Context) ([]*entity.StockMovement, error) {
			list, err := l.repos.Movements.ListByProduct(ctx, productID, limit, offset)
			return list, domain.AsPersistence("list movements", err)
		})
}
