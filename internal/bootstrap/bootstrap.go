// Package bootstrap arma las dependencias compartidas por los comandos (API y reconciliación)
// a partir de la configuración: motor de persistencia, caché y servicios de aplicación.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/application/coherence"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Store conexión abierta más los repos y el runner de transacciones sobre ella.
type Store struct {
	DB       sqlstore.DB
	Repos    repository.Repos
	TxRunner ports.TxRunner
}

// Close cierra la conexión subyacente.
func (s *Store) Close() error { return s.DB.Close() }

// OpenStore abre el motor configurado y aplica el esquema.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		db      sqlstore.DB
		dialect sqlstore.Dialect
	)
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		db, dialect = postgres.NewDB(pool), sqlstore.Postgres
	case config.StoreSQLite:
		sdb, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		db, dialect = sdb, sqlstore.SQLite
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}
	return &Store{
		DB:       db,
		Repos:    sqlstore.NewRepos(db, dialect),
		TxRunner: sqlstore.NewTxRunner(db, dialect),
	}, nil
}

// OpenCache construye el backend de caché configurado. Con redis verifica la conexión.
func OpenCache(ctx context.Context, cfg *config.Config) (ports.Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Namespace)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		return rc, nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Cache.Lookup, cfg.Cache.List), nil
	default:
		return nil, fmt.Errorf("CACHE_DRIVER desconocido: %q", cfg.Cache.Driver)
	}
}

// App servicios de aplicación listos para exponer.
type App struct {
	Store            *Store
	Cache            *coherence.Layer
	Ledger           *inventory.Ledger
	RegisterMovement *inventory.RegisterMovementUseCase
	Sales            *sales.Service
	Products         *usecase.ProductUseCase
	Customers        *usecase.CustomerUseCase
	Delegates        *usecase.DelegateUseCase

	backend ports.Cache
}

// Wire arma los servicios sobre un store y una caché ya abiertos.
func Wire(cfg *config.Config, store *Store, backend ports.Cache, log *logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	layer := coherence.New(backend, coherence.TTLs{
		Lookup:    cfg.Cache.Lookup,
		List:      cfg.Cache.List,
		Aggregate: cfg.Cache.Aggregate,
	}, log.Component("cache"))
	ledger := inventory.NewLedger(store.TxRunner, store.Repos, layer, log.Component("inventory"))

	opts := sales.DefaultOptions()
	opts.Precision = int32(cfg.Sales.Precision)
	opts.DuplicateWindow = cfg.Sales.DuplicateWindow
	opts.AllowNegativeStock = cfg.Sales.AllowNegativeStock
	opts.InvoicePrefix = cfg.Sales.InvoicePrefix

	return &App{
		Store:            store,
		Cache:            layer,
		Ledger:           ledger,
		RegisterMovement: inventory.NewRegisterMovementUseCase(store.TxRunner, ledger, layer, cfg.Sales.AllowNegativeStock),
		Sales:            sales.NewService(store.TxRunner, store.Repos, ledger, layer, log.Component("sales"), opts),
		Products:         usecase.NewProductUseCase(store.Repos.Products, layer),
		Customers:        usecase.NewCustomerUseCase(store.Repos.Customers, layer),
		Delegates:        usecase.NewDelegateUseCase(store.Repos.Delegates, layer),
		backend:          backend,
	}
}

// Close limpia la caché y cierra el backend y la base.
func (a *App) Close(ctx context.Context) error {
	a.Cache.Clear(ctx)
	cacheErr := a.backend.Close()
	if err := a.Store.Close(); err != nil {
		return err
	}
	return cacheErr
}
