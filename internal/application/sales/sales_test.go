package sales_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlstore"
)

// failingCommissions simula una caída del almacenamiento al guardar la comisión.
type failingCommissions struct {
	repository.CommissionRepository
}

func (failingCommissions) Create(context.Context, *entity.Commission) error {
	return errors.New("disco lleno")
}

// collidingSales rechaza las primeras inserciones como si el número de factura ya existiera.
type collidingSales struct {
	repository.SaleRepository
	left  int
	calls int
}

func (c *collidingSales) Create(ctx context.Context, sale *entity.Sale) error {
	c.calls++
	if c.left != 0 {
		c.left--
		return fmt.Errorf("%w: invoice_number %s", domain.ErrDuplicate, sale.InvoiceNumber)
	}
	return c.SaleRepository.Create(ctx, sale)
}

// wrappedTx permite decorar los repos que recibe cada transacción.
type wrappedTx struct {
	inner ports.TxRunner
	wrap  func(repository.Repos) repository.Repos
}

func (w wrappedTx) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	return w.inner.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		return fn(ctx, w.wrap(repos))
	})
}

type fixture struct {
	repos  repository.Repos
	tx     ports.TxRunner
	ledger *inventory.Ledger
	layer  *coherence.Layer
	svc    *sales.Service
	clock  time.Time
}

func setup(t *testing.T) *fixture {
	return setupWith(t, sales.DefaultOptions(), nil)
}

func setupWith(t *testing.T, opts sales.Options, wrap func(repository.Repos) repository.Repos) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{clock: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	f.repos = sqlstore.NewRepos(db, sqlstore.SQLite)
	f.tx = sqlstore.NewTxRunner(db, sqlstore.SQLite)
	f.layer = coherence.New(cache.NewMemoryCache(time.Minute, time.Minute), coherence.DefaultTTLs(), nil)
	f.ledger = inventory.NewLedger(f.tx, f.repos, f.layer, nil)

	var runner ports.TxRunner = f.tx
	if wrap != nil {
		runner = wrappedTx{inner: f.tx, wrap: wrap}
	}
	f.svc = sales.NewService(runner, f.repos, f.ledger, f.layer, nil, opts).
		WithClock(func() time.Time { return f.clock })
	return f
}

// advance mueve el reloj fuera de la ventana de duplicados.
func (f *fixture) advance() { f.clock = f.clock.Add(time.Minute) }

func (f *fixture) product(t *testing.T, stock int64) *entity.Product {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{ID: uuid.NewString(), SKU: uuid.NewString()[:8], Name: "Café", Price: dec("10"), CreatedAt: f.clock, UpdatedAt: f.clock}
	require.NoError(t, f.repos.Products.Create(ctx, p))
	if stock > 0 {
		uc := inventory.NewRegisterMovementUseCase(f.tx, f.ledger, f.layer, false)
		cost := dec("4")
		_, err := uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.RefOpening, Quantity: stock, UnitCost: &cost})
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) customer(t *testing.T) *entity.Customer {
	t.Helper()
	c := &entity.Customer{ID: uuid.NewString(), Name: "Tienda La 14", TaxID: uuid.NewString()[:10], CreatedAt: f.clock, UpdatedAt: f.clock}
	require.NoError(t, f.repos.Customers.Create(context.Background(), c))
	return c
}

func (f *fixture) delegate(t *testing.T, kind, rate string, active bool) *entity.Delegate {
	t.Helper()
	d := &entity.Delegate{ID: uuid.NewString(), Name: "Ana", CommissionType: kind, CommissionRate: dec(rate), Active: active, CreatedAt: f.clock, UpdatedAt: f.clock}
	require.NoError(t, f.repos.Delegates.Create(context.Background(), d))
	return d
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.CurrentStock
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "esperado %s, obtenido %s", want, got)
}

// baseSale 3 x 10 del producto + 1 x 20 manual = 50.
func baseSale(customerID, productID, paid string) sales.CreateSaleCommand {
	return sales.CreateSaleCommand{
		CustomerID:    customerID,
		PaymentMethod: entity.PaymentMethodCash,
		Paid:          dec(paid),
		Lines: []sales.LineInput{
			sales.CatalogLine{ProductID: productID, Quantity: 3, UnitPrice: dec("10")},
			sales.ManualLine{Description: "Empaque regalo", Quantity: 1, UnitPrice: dec("20")},
		},
	}
}

func catalogItem(sale *entity.Sale) *entity.SaleItem {
	for _, it := range sale.Items {
		if it.IsCatalog() {
			return it
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_PagadaSinDeuda(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	require.NoError(t, err)

	assertMoney(t, "50", sale.Net)
	assert.Equal(t, entity.PaymentStatusPaid, sale.PaymentStatus)
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
	assert.Regexp(t, `^V-20260302-[0-9A-F]{8}$`, sale.InvoiceNumber)

	debt, err := f.repos.Debts.GetBySaleID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Nil(t, debt)
	assert.Equal(t, int64(7), f.stock(t, p.ID))

	movs, err := f.repos.Movements.ListByReference(ctx, entity.RefSale, sale.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1, "la línea manual no mueve inventario")
	assert.Equal(t, entity.DirectionOut, movs[0].Direction)
	assert.Equal(t, int64(3), movs[0].Quantity)
	assertMoney(t, "4", movs[0].UnitCost)
}

func TestCreateSale_PagoParcialCreaDeuda(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "20"))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, sale.PaymentStatus)

	debt, err := f.repos.Debts.GetBySaleID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, debt)
	assertMoney(t, "30", debt.Amount)
	assert.Equal(t, entity.DebtStatusPartial, debt.Status)
	assert.Equal(t, c.ID, debt.CustomerID)
}

func TestCreateSale_SinPagoDeudaUnpaid(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "0"))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusUnpaid, sale.PaymentStatus)

	debt, err := f.repos.Debts.GetBySaleID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, debt)
	assert.Equal(t, entity.DebtStatusUnpaid, debt.Status)
	assert.Empty(t, debt.CustomerID)
}

func TestCreateSale_ExcesoAcreditaSaldoDelCliente(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "65"))
	require.NoError(t, err)
	assertMoney(t, "50", sale.Paid)

	got, err := f.repos.Customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assertMoney(t, "15", got.Balance)
}

func TestCreateSale_DescuentoEImpuesto(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCard,
		Discount:      dec("5"),
		Lines: []sales.LineInput{
			sales.CatalogLine{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50"), DiscountPercent: dec("10"), TaxPercent: dec("19")},
		},
	})
	require.NoError(t, err)

	// bruto 100, descuento de línea 10, impuesto 19% de 90 = 17.1
	assertMoney(t, "90", sale.Subtotal)
	assertMoney(t, "17.1", sale.Tax)
	assertMoney(t, "102.1", sale.Net)
	assert.True(t, domainsales.NetConsistent(sale, domainsales.DefaultPrecision))
}

func TestCreateSale_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	cases := []struct {
		name string
		cmd  sales.CreateSaleCommand
	}{
		{"sin líneas", sales.CreateSaleCommand{PaymentMethod: entity.PaymentMethodCash}},
		{"medio de pago inválido", sales.CreateSaleCommand{PaymentMethod: "bitcoin", Lines: []sales.LineInput{sales.ManualLine{Description: "x", Quantity: 1, UnitPrice: dec("1")}}}},
		{"cantidad cero", sales.CreateSaleCommand{PaymentMethod: entity.PaymentMethodCash, Lines: []sales.LineInput{sales.CatalogLine{ProductID: p.ID, Quantity: 0, UnitPrice: dec("1")}}}},
		{"precio negativo", sales.CreateSaleCommand{PaymentMethod: entity.PaymentMethodCash, Lines: []sales.LineInput{sales.ManualLine{Description: "x", Quantity: 1, UnitPrice: dec("-1")}}}},
		{"pago negativo", sales.CreateSaleCommand{PaymentMethod: entity.PaymentMethodCash, Paid: dec("-1"), Lines: []sales.LineInput{sales.ManualLine{Description: "x", Quantity: 1, UnitPrice: dec("1")}}}},
		{"descuento mayor al subtotal", sales.CreateSaleCommand{PaymentMethod: entity.PaymentMethodCash, Discount: dec("9"), Lines: []sales.LineInput{sales.ManualLine{Description: "x", Quantity: 1, UnitPrice: dec("5")}}}},
		{"manual sin descripción", sales.CreateSaleCommand{PaymentMethod: entity.PaymentMethodCash, Lines: []sales.LineInput{sales.ManualLine{Quantity: 1, UnitPrice: dec("5")}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateSale(ctx, tc.cmd)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	list, err := f.repos.Sales.List(ctx, repository.SaleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateSale_ClienteOProductoInexistente(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	_, err := f.svc.CreateSale(ctx, baseSale(uuid.NewString(), p.ID, "50"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.CreateSale(ctx, baseSale("", uuid.NewString(), "50"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(10), f.stock(t, p.ID))
}

func TestCreateSale_StockInsuficienteNoEscribeNada(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 4)

	cmd := sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCash,
		Lines: []sales.LineInput{
			sales.CatalogLine{ProductID: p.ID, Quantity: 3, UnitPrice: dec("10")},
			sales.CatalogLine{ProductID: p.ID, Quantity: 2, UnitPrice: dec("10")},
		},
	}
	_, err := f.svc.CreateSale(ctx, cmd)
	var serr *domain.InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, int64(5), serr.Requested)
	assert.Equal(t, int64(4), serr.Available)

	assert.Equal(t, int64(4), f.stock(t, p.ID))
	list, _ := f.repos.Sales.List(ctx, repository.SaleFilter{Limit: 10})
	assert.Empty(t, list)
}

func TestCreateSale_StockNegativoPermitido(t *testing.T) {
	ctx := context.Background()
	opts := sales.DefaultOptions()
	opts.AllowNegativeStock = true
	f := setupWith(t, opts, nil)
	p := f.product(t, 1)

	_, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err)
	assert.Equal(t, int64(-2), f.stock(t, p.ID))
}

func TestCreateSale_RepresentanteInactivo(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)
	d := f.delegate(t, entity.CommissionPercentage, "5", false)

	cmd := baseSale("", p.ID, "50")
	cmd.DelegateID = d.ID
	_, err := f.svc.CreateSale(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Duplicados
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_LlaveDeIdempotenciaRepetida(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	cmd := baseSale(c.ID, p.ID, "50")
	cmd.IdempotencyKey = "caja1-0001"
	first, err := f.svc.CreateSale(ctx, cmd)
	require.NoError(t, err)

	f.advance()
	_, err = f.svc.CreateSale(ctx, cmd)
	var dup *domain.DuplicateSaleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingSaleID)
	assert.Equal(t, "idempotency_key", dup.Reason)

	list, err := f.repos.Sales.List(ctx, repository.SaleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(7), f.stock(t, p.ID))
}

func TestCreateSale_VentanaDeDuplicados(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	first, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	require.NoError(t, err)

	f.clock = f.clock.Add(3 * time.Second)
	_, err = f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	var dup *domain.DuplicateSaleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingSaleID)
	assert.Equal(t, "duplicate_window", dup.Reason)

	f.advance()
	_, err = f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	assert.NoError(t, err, "fuera de la ventana se acepta")
}

func TestCreateSale_VentanaDesactivada(t *testing.T) {
	ctx := context.Background()
	opts := sales.DefaultOptions()
	opts.DuplicateWindow = 0
	f := setupWith(t, opts, nil)
	c := f.customer(t)
	p := f.product(t, 10)

	_, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	require.NoError(t, err)
	_, err = f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	assert.NoError(t, err)
}

func TestCreateSale_VentasAnonimasSinLlaveNoSeBloquean(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	first, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err)
	second, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err, "dos clientes de mostrador pueden comprar lo mismo en el mismo instante")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(4), f.stock(t, p.ID))

	// La llave de idempotencia sigue aplicando a las ventas anónimas.
	cmd := baseSale("", p.ID, "50")
	cmd.IdempotencyKey = "caja2-0001"
	keyed, err := f.svc.CreateSale(ctx, cmd)
	require.NoError(t, err)
	_, err = f.svc.CreateSale(ctx, cmd)
	var dup *domain.DuplicateSaleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, keyed.ID, dup.ExistingSaleID)
	assert.Equal(t, "idempotency_key", dup.Reason)
	assert.Equal(t, int64(1), f.stock(t, p.ID))
}

func TestCreateSale_FacturaRepetidaSeReintenta(t *testing.T) {
	ctx := context.Background()
	sales1 := &collidingSales{left: 1}
	f := setupWith(t, sales.DefaultOptions(), func(r repository.Repos) repository.Repos {
		sales1.SaleRepository = r.Sales
		r.Sales = sales1
		return r
	})
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err)
	assert.Equal(t, 2, sales1.calls)
	assert.Regexp(t, `^V-20260302-[0-9A-F]{8}$`, sale.InvoiceNumber)

	stored, err := f.repos.Sales.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, sale.InvoiceNumber, stored.InvoiceNumber)
	assert.Equal(t, int64(7), f.stock(t, p.ID))
}

func TestCreateSale_ChoqueDeUnicidadPersistenteNoEsDuplicado(t *testing.T) {
	ctx := context.Background()
	sales1 := &collidingSales{left: -1}
	f := setupWith(t, sales.DefaultOptions(), func(r repository.Repos) repository.Repos {
		sales1.SaleRepository = r.Sales
		r.Sales = sales1
		return r
	})
	p := f.product(t, 10)

	_, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
	var dup *domain.DuplicateSaleError
	assert.False(t, errors.As(err, &dup), "sin llave repetida no se informa venta duplicada")
	assert.Equal(t, 3, sales1.calls)

	list, err := f.repos.Sales.List(ctx, repository.SaleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(10), f.stock(t, p.ID))
}

func TestCreateSale_CantidadesDesbordadasSeRechazan(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	_, err := f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCash,
		Lines: []sales.LineInput{
			sales.CatalogLine{ProductID: p.ID, Quantity: math.MaxInt64, UnitPrice: dec("0.01")},
			sales.CatalogLine{ProductID: p.ID, Quantity: math.MaxInt64, UnitPrice: dec("0.01")},
			sales.CatalogLine{ProductID: p.ID, Quantity: 12, UnitPrice: dec("0.01")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cada línea dentro del tope, pero la suma por producto lo supera.
	_, err = f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCash,
		Lines: []sales.LineInput{
			sales.CatalogLine{ProductID: p.ID, Quantity: domainsales.MaxQuantity, UnitPrice: dec("0.01")},
			sales.CatalogLine{ProductID: p.ID, Quantity: 1, UnitPrice: dec("0.01")},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines[1].quantity", verr.Field)

	_, err = f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCash,
		Lines:         []sales.LineInput{sales.ManualLine{Description: "x", Quantity: domainsales.MaxQuantity + 1, UnitPrice: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, int64(10), f.stock(t, p.ID))
	list, err := f.repos.Sales.List(ctx, repository.SaleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateSale_LineaQueRedondeaACeroSeRechaza(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCash,
		Lines: []sales.LineInput{
			sales.ManualLine{Description: "bolsa", Quantity: 1, UnitPrice: dec("5")},
			sales.ManualLine{Description: "tornillo", Quantity: 1, UnitPrice: dec("0.001")},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines[1].unit_price", verr.Field)

	// Precios por debajo del centavo valen si la línea completa suma algo.
	sale, err := f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		PaymentMethod: entity.PaymentMethodCash,
		Paid:          dec("1"),
		Lines:         []sales.LineInput{sales.ManualLine{Description: "tornillo", Quantity: 1000, UnitPrice: dec("0.001")}},
	})
	require.NoError(t, err)
	assertMoney(t, "1", sale.Net)
}

// ──────────────────────────────────────────────────────────────────────────────
// Comisiones y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_ComisionPorcentajeInmutable(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)
	d := f.delegate(t, entity.CommissionPercentage, "5", true)

	sale, err := f.svc.CreateSale(ctx, sales.CreateSaleCommand{
		DelegateID:    d.ID,
		PaymentMethod: entity.PaymentMethodTransfer,
		Paid:          dec("1000"),
		Lines:         []sales.LineInput{sales.CatalogLine{ProductID: p.ID, Quantity: 1, UnitPrice: dec("1000")}},
	})
	require.NoError(t, err)

	com, err := f.repos.Commissions.GetBySaleAndDelegate(ctx, sale.ID, d.ID)
	require.NoError(t, err)
	require.NotNil(t, com)
	assertMoney(t, "50", com.Amount)
	assertMoney(t, "1000", com.BaseAmount)

	d.CommissionRate = dec("10")
	require.NoError(t, f.repos.Delegates.Update(ctx, d))

	list, err := f.svc.ListCommissionsByDelegate(ctx, d.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assertMoney(t, "50", list[0].Amount)
	assertMoney(t, "5", list[0].Rate)
}

func TestCreateSale_ComisionNoCalculableNoBloquea(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)
	d := f.delegate(t, entity.CommissionPercentage, "150", true)

	cmd := baseSale("", p.ID, "50")
	cmd.DelegateID = d.ID
	sale, err := f.svc.CreateSale(ctx, cmd)
	require.NoError(t, err)

	com, err := f.repos.Commissions.GetBySaleAndDelegate(ctx, sale.ID, d.ID)
	require.NoError(t, err)
	assert.Nil(t, com)
}

func TestCreateSale_FallaDeComisionRevierteTodo(t *testing.T) {
	ctx := context.Background()
	f := setupWith(t, sales.DefaultOptions(), func(r repository.Repos) repository.Repos {
		r.Commissions = failingCommissions{r.Commissions}
		return r
	})
	p := f.product(t, 10)
	d := f.delegate(t, entity.CommissionFixed, "0", true)

	cmd := baseSale("", p.ID, "20")
	cmd.DelegateID = d.ID
	_, err := f.svc.CreateSale(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	assert.Equal(t, int64(10), f.stock(t, p.ID))
	list, _ := f.repos.Sales.List(ctx, repository.SaleFilter{Limit: 10})
	assert.Empty(t, list)
	debts, _ := f.repos.Debts.List(ctx, repository.DebtFilter{Limit: 10})
	assert.Empty(t, debts)
	sum, _ := f.repos.Movements.SumByProduct(ctx, p.ID)
	assert.Equal(t, int64(10), sum, "el libro solo conserva la apertura")
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessReturn_ParcialRecalculaDeudaYStock(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "20"))
	require.NoError(t, err)
	item := catalogItem(sale)

	got, err := f.svc.ProcessReturn(ctx, sales.ReturnCommand{
		SaleID: sale.ID,
		Lines:  []sales.ReturnLine{{ItemID: item.ID, Quantity: 1}},
		Reason: "producto averiado",
	})
	require.NoError(t, err)

	assertMoney(t, "40", got.Net)
	assertMoney(t, "20", got.Paid)
	assert.Equal(t, entity.SaleStatusPartiallyReturned, got.Status)
	assert.Equal(t, entity.PaymentStatusPartial, got.PaymentStatus)
	assert.True(t, domainsales.NetConsistent(got, domainsales.DefaultPrecision))

	debt, err := f.repos.Debts.GetBySaleID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, debt)
	assertMoney(t, "20", debt.Amount)
	assert.Equal(t, int64(8), f.stock(t, p.ID))

	stored, err := f.repos.Sales.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Item(item.ID).ReturnedQuantity)
	assertMoney(t, "20", stored.Item(item.ID).Total)

	audits, err := f.svc.ListReturns(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, entity.ReturnStatusApplied, audits[0].Status)
	assertMoney(t, "10", audits[0].Amount)
	assertMoney(t, "0", audits[0].RefundAmount)
}

func TestProcessReturn_TotalReduceLoPagado(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "50"))
	require.NoError(t, err)

	var lines []sales.ReturnLine
	for _, it := range sale.Items {
		lines = append(lines, sales.ReturnLine{ItemID: it.ID, Quantity: it.Quantity})
	}
	got, err := f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: lines})
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusReturned, got.Status)
	assertMoney(t, "0", got.Net)
	assertMoney(t, "0", got.Paid)
	assert.Equal(t, int64(10), f.stock(t, p.ID), "solo la línea de catálogo vuelve al inventario")

	debt, _ := f.repos.Debts.GetBySaleID(ctx, sale.ID)
	assert.Nil(t, debt)

	audits, err := f.repos.Returns.ListBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assertMoney(t, "50", audits[0].RefundAmount)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: lines[:1]})
	var cerr *domain.ConsistencyError
	assert.ErrorAs(t, err, &cerr)
}

func TestProcessReturn_LineasRepetidasSeSuman(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err)
	item := catalogItem(sale)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: []sales.ReturnLine{
		{ItemID: item.ID, Quantity: 2}, {ItemID: item.ID, Quantity: 2},
	}})
	var rerr *domain.RangeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, int64(4), rerr.Requested)
	assert.Equal(t, int64(3), rerr.Remaining)
	assert.Equal(t, int64(7), f.stock(t, p.ID))

	audits, err := f.repos.Returns.ListBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, entity.ReturnStatusRejected, audits[0].Status)
	assert.NotEmpty(t, audits[0].Error)
}

func TestProcessReturn_CantidadesDesbordadasSeRechazan(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err)
	item := catalogItem(sale)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: []sales.ReturnLine{
		{ItemID: item.ID, Quantity: math.MaxInt64}, {ItemID: item.ID, Quantity: math.MaxInt64}, {ItemID: item.ID, Quantity: 3},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: []sales.ReturnLine{
		{ItemID: item.ID, Quantity: domainsales.MaxQuantity}, {ItemID: item.ID, Quantity: domainsales.MaxQuantity},
	}})
	var rerr *domain.RangeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, domainsales.MaxQuantity, rerr.Requested)
	assert.Equal(t, int64(3), rerr.Remaining)

	got, err := f.repos.Sales.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), catalogItem(got).ReturnedQuantity)
	assertMoney(t, "50", got.Net)
	assert.Equal(t, entity.SaleStatusCompleted, got.Status)
	assert.Equal(t, int64(7), f.stock(t, p.ID))
}

func TestProcessReturn_Errores(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)
	sale, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "50"))
	require.NoError(t, err)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: []sales.ReturnLine{{ItemID: "x", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: uuid.NewString(), Lines: []sales.ReturnLine{{ItemID: "x", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: sale.ID, Lines: []sales.ReturnLine{{ItemID: uuid.NewString(), Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos y consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordPayment_SaldaDeudaYAcreditaExceso(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 10)

	sale, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, "20"))
	require.NoError(t, err)

	got, err := f.svc.RecordPayment(ctx, sales.PaymentCommand{SaleID: sale.ID, Amount: dec("10"), Method: entity.PaymentMethodCash})
	require.NoError(t, err)
	assertMoney(t, "30", got.Paid)
	debt, err := f.svc.GetDebtBySale(ctx, sale.ID)
	require.NoError(t, err)
	assertMoney(t, "20", debt.Amount)

	got, err = f.svc.RecordPayment(ctx, sales.PaymentCommand{SaleID: sale.ID, Amount: dec("25"), Method: entity.PaymentMethodCard})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)
	assertMoney(t, "50", got.Paid)

	_, err = f.svc.GetDebtBySale(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la caché de deudas se invalidó")

	cust, _ := f.repos.Customers.GetByID(ctx, c.ID)
	assertMoney(t, "5", cust.Balance)

	_, err = f.svc.RecordPayment(ctx, sales.PaymentCommand{SaleID: sale.ID, Amount: dec("1"), Method: entity.PaymentMethodCash})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.RecordPayment(ctx, sales.PaymentCommand{SaleID: sale.ID, Amount: dec("0"), Method: entity.PaymentMethodCash})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsultas_CacheSeInvalidaTrasEscritura(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, 10)
	from := f.clock.Add(-time.Hour)
	to := f.clock.Add(time.Hour)

	sum, err := f.svc.SalesSummary(ctx, from, to)
	require.NoError(t, err)
	assert.Zero(t, sum.Count)

	sale, err := f.svc.CreateSale(ctx, baseSale("", p.ID, "20"))
	require.NoError(t, err)

	sum, err = f.svc.SalesSummary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.Count)
	assertMoney(t, "30", sum.Outstanding)

	got, err := f.svc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	list, err := f.svc.ListSales(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	debts, err := f.svc.ListDebts(ctx, repository.DebtFilter{})
	require.NoError(t, err)
	assert.Len(t, debts, 1)

	_, err = f.svc.GetSale(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.SalesSummary(ctx, to, from)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariantes tras una secuencia mixta
// ──────────────────────────────────────────────────────────────────────────────

func TestInvariantes_SecuenciaDeOperaciones(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t)
	p := f.product(t, 20)

	var created []*entity.Sale
	for _, paid := range []string{"0", "20", "50", "80"} {
		s, err := f.svc.CreateSale(ctx, baseSale(c.ID, p.ID, paid))
		require.NoError(t, err)
		created = append(created, s)
		f.advance()
	}
	_, err := f.svc.ProcessReturn(ctx, sales.ReturnCommand{SaleID: created[1].ID, Lines: []sales.ReturnLine{{ItemID: catalogItem(created[1]).ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, sales.PaymentCommand{SaleID: created[0].ID, Amount: dec("15"), Method: entity.PaymentMethodCash})
	require.NoError(t, err)

	for _, s := range created {
		sale, err := f.repos.Sales.GetByID(ctx, s.ID)
		require.NoError(t, err)

		assert.True(t, domainsales.NetConsistent(sale, domainsales.DefaultPrecision))
		assert.True(t, sale.Paid.LessThanOrEqual(sale.Net))
		assert.Equal(t, domainsales.PaymentStatus(sale.Paid, sale.Net), sale.PaymentStatus)

		debt, err := f.repos.Debts.GetBySaleID(ctx, s.ID)
		require.NoError(t, err)
		if sale.Remaining().IsPositive() {
			require.NotNil(t, debt)
			assert.True(t, debt.Amount.Equal(sale.Remaining()))
		} else {
			assert.Nil(t, debt)
		}
		for _, it := range sale.Items {
			assert.GreaterOrEqual(t, it.ReturnedQuantity, int64(0))
			assert.LessOrEqual(t, it.ReturnedQuantity, it.Quantity)
		}
	}

	sum, err := f.repos.Movements.SumByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, sum, f.stock(t, p.ID), "el stock materializado coincide con el libro")
	assert.Equal(t, int64(20-12+2), sum)
}
