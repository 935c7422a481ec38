// Package sales procesa ventas, devoluciones y pagos.
//
// Cada operación de escritura abre exactamente una transacción (ports.TxRunner) que cubre cabecera,
// líneas, movimientos de inventario, deuda y comisión; si algo falla se hace Rollback completo y el
// llamador recibe un error tipado de domain. Tras el Commit se invalidan las familias de caché
// afectadas antes de devolver.
package sales

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/application/validation"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Options parámetros de negocio configurables.
type Options struct {
	Precision          int32
	DuplicateWindow    time.Duration // 0 desactiva la ventana cliente+neto
	AllowNegativeStock bool
	InvoicePrefix      string
}

// DefaultOptions precisión 2, ventana de 10 s, sin stock negativo, prefijo "V".
func DefaultOptions() Options {
	return Options{
		Precision:       domainsales.DefaultPrecision,
		DuplicateWindow: 10 * time.Second,
		InvoicePrefix:   "V",
	}
}

// Service casos de uso de ventas.
type Service struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	ledger   *inventory.Ledger
	cache    *coherence.Layer
	log      *logger.Logger
	opts     Options
	validate *validator.Validate
	now      func() time.Time
}

// NewService construye el servicio. repos son los repositorios del pool (lecturas fuera de tx).
func NewService(
	txRunner ports.TxRunner,
	repos repository.Repos,
	ledger *inventory.Ledger,
	cache *coherence.Layer,
	log *logger.Logger,
	opts Options,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if opts.InvoicePrefix == "" {
		opts.InvoicePrefix = "V"
	}
	return &Service{
		txRunner: txRunner,
		repos:    repos,
		ledger:   ledger,
		cache:    cache,
		log:      log,
		opts:     opts,
		validate: validation.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
