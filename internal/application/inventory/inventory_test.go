package inventory_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlstore"
)

type fixture struct {
	repos  repository.Repos
	ledger *inventory.Ledger
	uc     *inventory.RegisterMovementUseCase
	layer  *coherence.Layer
}

func setup(t *testing.T, allowNegative bool) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := sqlstore.NewRepos(db, sqlstore.SQLite)
	tx := sqlstore.NewTxRunner(db, sqlstore.SQLite)
	layer := coherence.New(cache.NewMemoryCache(time.Minute, time.Minute), coherence.DefaultTTLs(), nil)
	ledger := inventory.NewLedger(tx, repos, layer, nil)
	return &fixture{
		repos:  repos,
		ledger: ledger,
		uc:     inventory.NewRegisterMovementUseCase(tx, ledger, layer, allowNegative),
		layer:  layer,
	}
}

func (f *fixture) product(t *testing.T) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{ID: uuid.NewString(), SKU: uuid.NewString()[:8], Name: "Harina", Price: decimal.NewFromInt(5), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func cost(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos manuales
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_CompraActualizaStockYCosto(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	p := f.product(t)

	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefPurchase, Quantity: 10, UnitCost: cost("100")})
	require.NoError(t, err)
	_, err = f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefPurchase, Quantity: 10, UnitCost: cost("200")})
	require.NoError(t, err)

	got, _ := f.repos.Products.GetByID(ctx, p.ID)
	assert.Equal(t, int64(20), got.CurrentStock)
	assert.Equal(t, "150", got.Cost.String())
}

func TestRegisterMovement_AjusteNegativoSinStock(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	p := f.product(t)

	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefAdjustment, Quantity: -1})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(0), stockErr.Available)

	movs, _ := f.repos.Movements.ListByProduct(ctx, p.ID, 10, 0)
	assert.Empty(t, movs)
}

func TestRegisterMovement_AjusteNegativoPermitido(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)
	p := f.product(t)

	mov, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefAdjustment, Quantity: -2})
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionOut, mov.Direction)
	assert.Equal(t, int64(2), mov.Quantity)

	stock, err := f.ledger.GetCurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), stock)
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	p := f.product(t)

	cases := []inventory.MovementInput{
		{ProductID: "", Type: entity.RefPurchase, Quantity: 1, UnitCost: cost("1")},
		{ProductID: p.ID, Type: entity.RefPurchase, Quantity: 1},
		{ProductID: p.ID, Type: entity.RefPurchase, Quantity: 0, UnitCost: cost("1")},
		{ProductID: p.ID, Type: entity.RefAdjustment, Quantity: 0},
		{ProductID: p.ID, Type: entity.RefSale, Quantity: 1},
		{ProductID: p.ID, Type: entity.RefOpening, Quantity: math.MaxInt64, UnitCost: cost("1")},
		{ProductID: p.ID, Type: entity.RefAdjustment, Quantity: math.MinInt64},
	}
	for _, in := range cases {
		_, err := f.uc.RegisterMovement(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}

	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: "nope", Type: entity.RefOpening, Quantity: 1, UnitCost: cost("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Proyección y reconciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestGetCurrentStock_SeInvalidaTrasMovimiento(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	p := f.product(t)

	stock, err := f.ledger.GetCurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, stock)

	_, err = f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefOpening, Quantity: 7, UnitCost: cost("2")})
	require.NoError(t, err)

	stock, err = f.ledger.GetCurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stock)

	_, err = f.ledger.GetCurrentStock(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectCurrentStock_CorrigeDesvio(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	p := f.product(t)
	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefOpening, Quantity: 5, UnitCost: cost("1")})
	require.NoError(t, err)

	// Corrupción del valor materializado por fuera del libro.
	require.NoError(t, f.repos.Products.SetStock(ctx, p.ID, 99))

	proj, err := f.ledger.ProjectCurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), proj.Previous)
	assert.Equal(t, int64(5), proj.Projected)
	assert.Equal(t, int64(94), proj.Drift())

	stock, err := f.ledger.GetCurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock)
}

func TestReconcile_ReportaYRepara(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	ok := f.product(t)
	bad := f.product(t)
	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: ok.ID, Type: entity.RefOpening, Quantity: 3, UnitCost: cost("1")})
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.SetStock(ctx, bad.ID, 4))

	report, err := f.ledger.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Drifted, 1)
	assert.Equal(t, bad.ID, report.Drifted[0].ProductID)

	got, _ := f.repos.Products.GetByID(ctx, bad.ID)
	assert.Equal(t, int64(4), got.CurrentStock)

	report, err = f.ledger.Reconcile(ctx, true)
	require.NoError(t, err)
	require.Len(t, report.Drifted, 1)
	got, _ = f.repos.Products.GetByID(ctx, bad.ID)
	assert.Zero(t, got.CurrentStock)

	report, err = f.ledger.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, report.Drifted)
}

func TestListMovements_OrdenCronologicoEInvalidacion(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	p := f.product(t)
	_, err := f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefOpening, Quantity: 5, UnitCost: cost("2")})
	require.NoError(t, err)

	list, err := f.ledger.ListMovements(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefAdjustment, Quantity: -2})
	require.NoError(t, err)

	list, err = f.ledger.ListMovements(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.DirectionIn, list[0].Direction)
	assert.Equal(t, entity.DirectionOut, list[1].Direction)
	assert.Equal(t, int64(2), list[1].Quantity)
}
