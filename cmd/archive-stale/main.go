package main

import (
	"context"
	"flag"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ventas/pkg/clock"
	"github.com/jhoicas/inventario-ventas/pkg/config"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

// Desactiva los productos sin movimientos recientes de todas las empresas
// activas. Pensado para correr como tarea programada (cron).
func main() {
	days := flag.Int("days", 90, "días sin movimientos para considerar un producto obsoleto")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	movRepo := postgres.NewInventoryMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clk := clock.System()
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute

	// Con backend redis hay que invalidar el snapshot compartido que lee el API;
	// con backend memory cada proceso tiene el suyo y no hay nada que invalidar.
	var statusCache inventory.StatusCache
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		defer client.Close()
		statusCache = cache.NewRedisStatusCache(client, ttl, log)
	} else {
		statusCache = cache.NewMemoryStatusCache(ttl, clk)
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, movRepo, productRepo, statusCache, clk, log)
	archiveUC := inventory.NewArchiveStaleUseCase(ledgerUC, companyRepo, productRepo, log)

	total, err := archiveUC.Run(ctx, *days)
	if err != nil {
		log.Fatal().Err(err).Int("archived", total).Msg("archivo de productos obsoletos falló")
	}
	log.Info().Int("archived", total).Int("days", *days).Msg("archivo de productos obsoletos completado")
}
