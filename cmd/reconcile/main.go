// reconcile recalcula el stock materializado desde el libro de movimientos y reporta los desvíos.
//
// Uso:
//
//	go run ./cmd/reconcile                  # todos los productos, solo reporte
//	go run ./cmd/reconcile -repair          # corrige cada desvío
//	go run ./cmd/reconcile -product-id <id> # un solo producto (siempre corrige)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/Ventas-api/internal/bootstrap"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

func main() {
	productID := flag.String("product-id", "", "producto a recalcular (vacío: todos)")
	repair := flag.Bool("repair", false, "corregir los desvíos encontrados")
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de ejecución")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "reconcile"})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	backend, err := bootstrap.OpenCache(ctx, cfg)
	if err != nil {
		_ = store.Close()
		log.Fatal().Err(err).Msg("abrir caché")
	}
	svc := bootstrap.Wire(cfg, store, backend, log)
	defer func() {
		if err := svc.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("cierre de almacenamiento")
		}
	}()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *productID != "" {
		proj, err := svc.Ledger.ProjectCurrentStock(ctx, *productID)
		if err != nil {
			log.Error().Err(err).Str("product_id", *productID).Msg("recalcular stock")
			return
		}
		_ = enc.Encode(proj)
		return
	}

	report, err := svc.Ledger.Reconcile(ctx, *repair)
	if err != nil {
		log.Error().Err(err).Msg("reconciliación interrumpida")
	}
	if report != nil {
		_ = enc.Encode(report)
	}
}
