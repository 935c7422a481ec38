package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/validation"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/commission"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// LineInput línea del comando: CatalogLine o ManualLine.
type LineInput interface {
	toItem(saleID string, line int) *entity.SaleItem
}

// CatalogLine línea ligada a un producto; precio resuelto por el cliente.
type CatalogLine struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Quantity        int64           `json:"quantity" validate:"gt=0,lte=1000000000"`
	UnitPrice       decimal.Decimal `json:"unit_price" validate:"gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxPercent      decimal.Decimal `json:"tax_percent" validate:"gte=0,lte=100"`
}

func (l CatalogLine) toItem(saleID string, line int) *entity.SaleItem {
	return &entity.SaleItem{
		ID:              uuid.New().String(),
		SaleID:          saleID,
		Line:            line,
		Kind:            entity.ItemKindCatalog,
		ProductID:       l.ProductID,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
		TaxPercent:      l.TaxPercent,
	}
}

// ManualLine entrada libre; nunca toca inventario.
type ManualLine struct {
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    int64           `json:"quantity" validate:"gt=0,lte=1000000000"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gt=0"`
}

func (l ManualLine) toItem(saleID string, line int) *entity.SaleItem {
	return &entity.SaleItem{
		ID:          uuid.New().String(),
		SaleID:      saleID,
		Line:        line,
		Kind:        entity.ItemKindManual,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
	}
}

// CreateSaleCommand datos para registrar una venta. CustomerID vacío = cliente anónimo.
type CreateSaleCommand struct {
	CustomerID     string          `json:"customer_id"`
	DelegateID     string          `json:"delegate_id"`
	CashierID      string          `json:"cashier_id"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=128"`
	PaymentMethod  string          `json:"payment_method" validate:"required,oneof=cash card transfer credit"`
	Paid           decimal.Decimal `json:"paid" validate:"gte=0"`
	Discount       decimal.Decimal `json:"discount" validate:"gte=0"`
	Notes          string          `json:"notes" validate:"max=500"`
	Lines          []LineInput     `json:"-"`
}

func (s *Service) validateCreate(cmd CreateSaleCommand) error {
	if err := s.validate.Struct(cmd); err != nil {
		return validation.Error(err, "")
	}
	if len(cmd.Lines) == 0 {
		return domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	for i, line := range cmd.Lines {
		if line == nil {
			return domain.NewValidationError(fmt.Sprintf("lines[%d]", i), "vacía")
		}
		if err := s.validate.Struct(line); err != nil {
			return validation.Error(err, fmt.Sprintf("lines[%d]", i))
		}
	}
	return nil
}

// CreateSale valida, totaliza y persiste la venta con todos sus efectos en una sola transacción:
// cabecera y líneas, una salida de inventario por línea de catálogo, saldo a favor por pago en exceso,
// deuda y comisión del representante.
func (s *Service) CreateSale(ctx context.Context, cmd CreateSaleCommand) (*entity.Sale, error) {
	if err := s.validateCreate(cmd); err != nil {
		return nil, err
	}

	now := s.now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		CustomerID:     cmd.CustomerID,
		DelegateID:     cmd.DelegateID,
		CashierID:      cmd.CashierID,
		IdempotencyKey: cmd.IdempotencyKey,
		PaymentMethod:  cmd.PaymentMethod,
		Discount:       cmd.Discount,
		Status:         entity.SaleStatusCompleted,
		Notes:          cmd.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	sale.InvoiceNumber = s.invoiceNumber(sale.ID, now)
	for i, line := range cmd.Lines {
		sale.Items = append(sale.Items, line.toItem(sale.ID, i+1))
	}
	requested, err := requestedPerProduct(sale)
	if err != nil {
		return nil, err
	}
	domainsales.Reprice(sale, s.opts.Precision)
	for i, it := range sale.Items {
		// Un precio por debajo de la precisión de la moneda deja la línea en cero.
		if !it.Total.Add(it.DiscountAmount).IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].unit_price", i), "el importe de la línea redondea a cero")
		}
	}
	if cmd.Discount.GreaterThan(sale.Subtotal) {
		return nil, domain.NewValidationError("discount", "supera el subtotal")
	}
	excess := domainsales.ApplyPayment(sale, cmd.Paid)

	// Chequeo rápido fuera de la tx; se repite dentro para cerrar la carrera.
	if err := s.checkDuplicate(ctx, s.repos, sale); err != nil {
		return nil, err
	}

	var created *entity.Commission
	for attempt := 1; ; attempt++ {
		created, err = s.persistSale(ctx, sale, requested, excess, now)
		if !errors.Is(err, errSaleUnique) {
			break
		}
		if id := s.existingByKey(ctx, sale.IdempotencyKey); id != "" {
			err = &domain.DuplicateSaleError{ExistingSaleID: id, Reason: "idempotency_key"}
			break
		}
		if attempt == maxInvoiceAttempts {
			err = &domain.PersistenceError{Op: "create sale", Err: err}
			break
		}
		previous := sale.InvoiceNumber
		sale.InvoiceNumber = s.invoiceNumber(uuid.New().String(), now)
		s.log.Warn().Str("sale_id", sale.ID).Str("invoice", previous).Str("retry_invoice", sale.InvoiceNumber).
			Msg("ventas: número de factura repetido, se genera otro")
	}
	if err != nil {
		return nil, domain.AsPersistence("create sale", err)
	}

	entities := []coherence.Entity{coherence.EntitySale, coherence.EntityDebt}
	if countCatalog(sale) > 0 {
		entities = append(entities, coherence.EntityProduct)
	}
	if created != nil {
		entities = append(entities, coherence.EntityCommission)
	}
	s.cache.InvalidateEntities(ctx, entities...)

	s.log.Info().Str("sale_id", sale.ID).Str("invoice", sale.InvoiceNumber).
		Str("net", sale.Net.String()).Str("payment_status", sale.PaymentStatus).Msg("ventas: venta registrada")
	if excess.IsPositive() && sale.IsAnonymous() {
		s.log.Debug().Str("sale_id", sale.ID).Str("change", excess.String()).Msg("ventas: cambio entregado")
	}
	return sale, nil
}

// maxInvoiceAttempts intentos de inserción ante choques de unicidad que no son la llave de idempotencia.
const maxInvoiceAttempts = 3

// errSaleUnique la inserción chocó con una restricción única; el llamador decide cuál.
var errSaleUnique = errors.New("sales: unique violation")

// persistSale ejecuta la transacción de alta y devuelve la comisión creada, si hubo.
func (s *Service) persistSale(ctx context.Context, sale *entity.Sale, requested map[string]int64, excess decimal.Decimal, now time.Time) (*entity.Commission, error) {
	var created *entity.Commission
	err := s.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := s.checkDuplicate(ctx, repos, sale); err != nil {
			return err
		}
		if err := s.checkParties(ctx, repos, sale); err != nil {
			return err
		}
		products, err := s.lockProducts(ctx, repos, requested)
		if err != nil {
			return err
		}

		if err := repos.Sales.Create(ctx, sale); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				// La tx quedó inválida en PostgreSQL; la causa se averigua después del Rollback.
				return fmt.Errorf("%w: %v", errSaleUnique, err)
			}
			return err
		}
		for _, it := range sale.Items {
			if !it.IsCatalog() {
				continue
			}
			_, err := s.ledger.Append(ctx, repos, inventory.Entry{
				ProductID:     it.ProductID,
				Direction:     entity.DirectionOut,
				Quantity:      it.Quantity,
				UnitCost:      products[it.ProductID].Cost,
				ReferenceType: entity.RefSale,
				ReferenceID:   sale.ID,
				CreatedBy:     sale.CashierID,
			}, now)
			if err != nil {
				return err
			}
		}
		if excess.IsPositive() && !sale.IsAnonymous() {
			if err := repos.Customers.AddBalance(ctx, sale.CustomerID, excess); err != nil {
				return err
			}
		}
		if _, err := SyncDebt(ctx, repos.Debts, sale, now); err != nil {
			return err
		}
		created, err = s.recordCommission(ctx, repos, sale, now)
		return err
	})
	return created, err
}

func countCatalog(sale *entity.Sale) int {
	n := 0
	for _, it := range sale.Items {
		if it.IsCatalog() {
			n++
		}
	}
	return n
}

func (s *Service) invoiceNumber(id string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", s.opts.InvoicePrefix, now.Format("20060102"), strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8]))
}

// checkDuplicate misma llave de idempotencia, o mismo cliente identificado y mismo neto dentro de la ventana.
// Las ventas anónimas sólo se deduplican por llave.
func (s *Service) checkDuplicate(ctx context.Context, repos repository.Repos, sale *entity.Sale) error {
	if sale.IdempotencyKey != "" {
		existing, err := repos.Sales.GetByIdempotencyKey(ctx, sale.IdempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.DuplicateSaleError{ExistingSaleID: existing.ID, Reason: "idempotency_key"}
		}
	}
	if s.opts.DuplicateWindow <= 0 || sale.IsAnonymous() {
		return nil
	}
	recent, err := repos.Sales.FindRecent(ctx, sale.CustomerID, sale.Net, sale.CreatedAt.Add(-s.opts.DuplicateWindow))
	if err != nil {
		return err
	}
	if recent != nil {
		return &domain.DuplicateSaleError{ExistingSaleID: recent.ID, Reason: "duplicate_window"}
	}
	return nil
}

func (s *Service) existingByKey(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	existing, err := s.repos.Sales.GetByIdempotencyKey(ctx, key)
	if err != nil || existing == nil {
		return ""
	}
	return existing.ID
}

// checkParties cliente y representante referenciados deben existir.
func (s *Service) checkParties(ctx context.Context, repos repository.Repos, sale *entity.Sale) error {
	if !sale.IsAnonymous() {
		c, err := repos.Customers.GetByID(ctx, sale.CustomerID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.NewNotFoundError("cliente", sale.CustomerID)
		}
	}
	if sale.HasDelegate() {
		d, err := repos.Delegates.GetByID(ctx, sale.DelegateID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NewNotFoundError("representante", sale.DelegateID)
		}
		if !d.Active {
			return domain.NewValidationError("delegate_id", "representante inactivo")
		}
	}
	return nil
}

// requestedPerProduct suma las unidades pedidas por producto; la suma no puede pasar de MaxQuantity.
func requestedPerProduct(sale *entity.Sale) (map[string]int64, error) {
	requested := make(map[string]int64)
	for i, it := range sale.Items {
		if !it.IsCatalog() {
			continue
		}
		sum, ok := domainsales.AddQuantity(requested[it.ProductID], it.Quantity)
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i),
				fmt.Sprintf("la cantidad total del producto supera %d", domainsales.MaxQuantity))
		}
		requested[it.ProductID] = sum
	}
	return requested, nil
}

// lockProducts bloquea cada producto (en orden de ID para evitar interbloqueos) y verifica
// que el stock materializado cubra la suma pedida, salvo que se permita stock negativo.
func (s *Service) lockProducts(ctx context.Context, repos repository.Repos, requested map[string]int64) (map[string]*entity.Product, error) {
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewNotFoundError("producto", id)
		}
		if !s.opts.AllowNegativeStock && p.CurrentStock < requested[id] {
			return nil, &domain.InsufficientStockError{ProductID: id, Requested: requested[id], Available: p.CurrentStock}
		}
		products[id] = p
	}
	return products, nil
}

// recordCommission calcula y guarda la comisión con la política vigente del representante.
// Un fallo de cálculo se registra y no bloquea la venta; un fallo al persistir aborta la tx.
func (s *Service) recordCommission(ctx context.Context, repos repository.Repos, sale *entity.Sale, now time.Time) (*entity.Commission, error) {
	if !sale.HasDelegate() {
		return nil, nil
	}
	delegate, err := repos.Delegates.GetByID(ctx, sale.DelegateID)
	if err != nil {
		return nil, err
	}
	if delegate == nil {
		return nil, domain.NewNotFoundError("representante", sale.DelegateID)
	}
	policy := commission.PolicyOf(delegate)
	amount, err := commission.Calculate(policy, sale.Net)
	if err != nil {
		s.log.Warn().Err(err).Str("sale_id", sale.ID).Str("delegate_id", delegate.ID).
			Msg("ventas: comisión no calculada, la venta continúa")
		return nil, nil
	}
	rate := policy.Rate
	if policy.Type == entity.CommissionFixed {
		rate = policy.FixedAmount
	}
	c := &entity.Commission{
		ID:             uuid.New().String(),
		SaleID:         sale.ID,
		DelegateID:     delegate.ID,
		CommissionType: policy.Type,
		Rate:           rate,
		BaseAmount:     sale.Net,
		Amount:         amount,
		CreatedAt:      now,
	}
	if err := repos.Commissions.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
