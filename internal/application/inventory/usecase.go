package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// RegisterMovementUseCase registra entradas de compra, ajustes y stock inicial de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback. Las salidas por venta y las entradas
// por devolución las asientan los casos de uso de ventas con el mismo Ledger.
type RegisterMovementUseCase struct {
	txRunner      ports.TxRunner
	ledger        *Ledger
	cache         *coherence.Layer
	allowNegative bool
	now           func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner ports.TxRunner, ledger *Ledger, cache *coherence.Layer, allowNegative bool) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		ledger:        ledger,
		cache:         cache,
		allowNegative: allowNegative,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// MovementInput entrada para registrar un movimiento manual.
// purchase y opening: Quantity > 0 y UnitCost obligatorio. adjustment: Quantity con signo, distinto de 0.
type MovementInput struct {
	UserID    string
	ProductID string
	Type      string
	Quantity  int64
	UnitCost  *decimal.Decimal
	Notes     string
	Reference string
}

// RegisterMovement bloquea el producto, aplica la lógica según tipo y hace Commit o Rollback.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	if input.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	switch input.Type {
	case entity.RefPurchase, entity.RefOpening:
		if input.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
		}
		if input.UnitCost == nil || input.UnitCost.IsNegative() {
			return nil, domain.NewValidationError("unit_cost", "requerido y no negativo")
		}
	case entity.RefAdjustment:
		if input.Quantity == 0 {
			return nil, domain.NewValidationError("quantity", "no puede ser cero")
		}
	default:
		return nil, domain.NewValidationError("type", "debe ser purchase, adjustment u opening")
	}
	if input.Quantity > domainsales.MaxQuantity || input.Quantity < -domainsales.MaxQuantity {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("fuera de rango (máximo %d)", domainsales.MaxQuantity))
	}

	now := uc.now()
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		product, err := repos.Products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFoundError("producto", input.ProductID)
		}
		if input.Quantity > 0 {
			mov, err = uc.doIN(ctx, repos, product, input, now)
		} else {
			mov, err = uc.doOUT(ctx, repos, product, input, now)
		}
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("register movement", err)
	}
	uc.cache.InvalidateEntities(ctx, coherence.EntityProduct)
	return mov, nil
}

// doIN: recalcula el costo promedio ponderado, lo guarda y asienta la entrada.
func (uc *RegisterMovementUseCase) doIN(ctx context.Context, repos repository.Repos, product *entity.Product, input MovementInput, now time.Time) (*entity.StockMovement, error) {
	unitCost := product.Cost
	if input.UnitCost != nil {
		unitCost = *input.UnitCost
		newCost := inventory.CostCalculator(product.CurrentStock, product.Cost, input.Quantity, unitCost)
		if err := repos.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
			return nil, err
		}
	}
	return uc.ledger.Append(ctx, repos, Entry{
		ProductID:     product.ID,
		Direction:     entity.DirectionIn,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		ReferenceType: input.Type,
		ReferenceID:   uc.reference(input),
		Notes:         input.Notes,
		CreatedBy:     input.UserID,
	}, now)
}

// doOUT: ajuste negativo; verifica stock suficiente salvo que se permita stock negativo.
func (uc *RegisterMovementUseCase) doOUT(ctx context.Context, repos repository.Repos, product *entity.Product, input MovementInput, now time.Time) (*entity.StockMovement, error) {
	qty := -input.Quantity
	if !uc.allowNegative && product.CurrentStock < qty {
		return nil, &domain.InsufficientStockError{ProductID: product.ID, Requested: qty, Available: product.CurrentStock}
	}
	return uc.ledger.Append(ctx, repos, Entry{
		ProductID:     product.ID,
		Direction:     entity.DirectionOut,
		Quantity:      qty,
		UnitCost:      product.Cost,
		ReferenceType: input.Type,
		ReferenceID:   uc.reference(input),
		Notes:         input.Notes,
		CreatedBy:     input.UserID,
	}, now)
}

func (uc *RegisterMovementUseCase) reference(input MovementInput) string {
	if input.Reference != "" {
		return input.Reference
	}
	return input.Type + "-" + uc.now().Format("20060102150405")
}
