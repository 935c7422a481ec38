// Package coherence mantiene la caché de lecturas coherente con las escrituras.
//
// Las claves siguen la convención {familia}:{operación}:{hash de parámetros}. Toda escritura
// sobre ventas, productos, clientes o deudas invalida de forma síncrona las familias afectadas
// antes de responder; el TTL solo acota lo que nadie invalidó. Un fallo de la caché se registra
// y se descarta: nunca hace fallar la operación de negocio.
package coherence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Family familia de claves de caché.
type Family string

const (
	FamilySales       Family = "sales"
	FamilyProducts    Family = "products"
	FamilyStock       Family = "stock"
	FamilyCustomers   Family = "customers"
	FamilyDebts       Family = "debts"
	FamilyDelegates   Family = "delegates"
	FamilyCommissions Family = "commissions"
	FamilyReports     Family = "reports"
)

// Kind tipo de lectura; decide el TTL por defecto.
type Kind int

const (
	KindLookup Kind = iota
	KindList
	KindAggregate
)

// Entity entidad escrita por una operación.
type Entity string

const (
	EntitySale       Entity = "sale"
	EntityProduct    Entity = "product"
	EntityCustomer   Entity = "customer"
	EntityDebt       Entity = "debt"
	EntityDelegate   Entity = "delegate"
	EntityCommission Entity = "commission"
)

// dependents familias que pueden contener datos derivados de cada entidad.
var dependents = map[Entity][]Family{
	EntitySale:       {FamilySales, FamilyDebts, FamilyCustomers, FamilyReports},
	EntityProduct:    {FamilyProducts, FamilyStock, FamilyReports},
	EntityCustomer:   {FamilyCustomers, FamilyDebts},
	EntityDebt:       {FamilyDebts, FamilyCustomers, FamilyReports},
	EntityDelegate:   {FamilyDelegates},
	EntityCommission: {FamilyCommissions, FamilyReports},
}

// FamiliesFor devuelve las familias a invalidar para las entidades dadas, sin repetir.
func FamiliesFor(entities ...Entity) []Family {
	seen := make(map[Family]bool)
	var out []Family
	for _, e := range entities {
		for _, f := range dependents[e] {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// TTLs duraciones por tipo de lectura.
type TTLs struct {
	Lookup    time.Duration
	List      time.Duration
	Aggregate time.Duration
}

// DefaultTTLs catálogo/búsquedas 10 min, listados 4 min, agregados 15 min.
func DefaultTTLs() TTLs {
	return TTLs{Lookup: 10 * time.Minute, List: 4 * time.Minute, Aggregate: 15 * time.Minute}
}

func (t TTLs) of(kind Kind) time.Duration {
	switch kind {
	case KindList:
		return t.List
	case KindAggregate:
		return t.Aggregate
	default:
		return t.Lookup
	}
}

// Layer capa de coherencia sobre un ports.Cache.
type Layer struct {
	cache ports.Cache
	ttl   TTLs
	log   *logger.Logger
	group singleflight.Group

	mu  sync.Mutex
	gen map[Family]uint64
}

// New construye la capa. Se crea al arrancar y se limpia al apagar (Clear).
func New(cache ports.Cache, ttl TTLs, log *logger.Logger) *Layer {
	if log == nil {
		log = logger.Nop()
	}
	return &Layer{cache: cache, ttl: ttl, log: log, gen: make(map[Family]uint64)}
}

// Key arma la clave {familia}:{operación}:{hash}. El hash es xxhash del JSON de los parámetros.
func Key(family Family, op string, params ...any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(fmt.Sprint(params...))
	}
	return fmt.Sprintf("%s:%s:%016x", family, op, xxhash.Sum64(raw))
}

// Get lee la clave sobre dest. Un error de la caché cuenta como fallo de lectura.
func (l *Layer) Get(ctx context.Context, key string, dest any) bool {
	ok, err := l.cache.Get(ctx, key, dest)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache: lectura fallida")
		return false
	}
	return ok
}

// Set guarda value con el TTL del tipo indicado.
func (l *Layer) Set(ctx context.Context, key string, value any, kind Kind) {
	if err := l.cache.Set(ctx, key, value, l.ttl.of(kind)); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache: escritura fallida")
	}
}

// Invalidate elimina una clave puntual.
func (l *Layer) Invalidate(ctx context.Context, key string) {
	if err := l.cache.Invalidate(ctx, key); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache: invalidación fallida")
	}
}

// InvalidateFamilies elimina todas las claves de las familias dadas ("{familia}:*").
func (l *Layer) InvalidateFamilies(ctx context.Context, families ...Family) {
	l.mu.Lock()
	for _, f := range families {
		l.gen[f]++
	}
	l.mu.Unlock()
	for _, f := range families {
		if err := l.cache.InvalidatePattern(ctx, string(f)+":*"); err != nil {
			l.log.Error().Err(err).Str("family", string(f)).Msg("cache: invalidación de familia fallida")
		}
	}
}

// InvalidateEntities invalida todas las familias afectadas por escrituras sobre las entidades.
func (l *Layer) InvalidateEntities(ctx context.Context, entities ...Entity) {
	l.InvalidateFamilies(ctx, FamiliesFor(entities...)...)
}

// Clear vacía la caché completa.
func (l *Layer) Clear(ctx context.Context) {
	l.mu.Lock()
	for f := range l.gen {
		l.gen[f]++
	}
	l.mu.Unlock()
	if err := l.cache.Clear(ctx); err != nil {
		l.log.Warn().Err(err).Msg("cache: limpieza fallida")
	}
}

func (l *Layer) generation(f Family) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen[f]
}

// GetOrLoad devuelve el valor cacheado o lo carga con load y lo guarda.
// Cargas concurrentes de la misma clave se agrupan con singleflight. Si la familia se invalidó
// mientras se cargaba, el resultado se devuelve pero no se guarda.
func GetOrLoad[T any](ctx context.Context, l *Layer, family Family, kind Kind, op string, params []any, load func(context.Context) (T, error)) (T, error) {
	key := Key(family, op, params...)
	var cached T
	if l.Get(ctx, key, &cached) {
		return cached, nil
	}

	gen := l.generation(family)
	v, err, _ := l.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return loaded, err
		}
		if l.generation(family) == gen {
			l.Set(ctx, key, loaded, kind)
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
