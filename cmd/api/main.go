package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/inventario-ventas/internal/interfaces/http"
	"github.com/jhoicas/inventario-ventas/pkg/clock"
	"github.com/jhoicas/inventario-ventas/pkg/config"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movRepo := postgres.NewInventoryMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clk := clock.System()
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute

	var statusCache inventory.StatusCache
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		defer client.Close()
		statusCache = cache.NewRedisStatusCache(client, ttl, log)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("cache de inventario en Redis")
	default:
		statusCache = cache.NewMemoryStatusCache(ttl, clk)
		log.Info().Msg("cache de inventario en memoria")
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, movRepo, productRepo, statusCache, clk, log)

	dispatcherCfg := queue.Config{
		Workers:     cfg.Settlement.Workers,
		MaxAttempts: cfg.Settlement.MaxAttempts,
		Timeout:     time.Duration(cfg.Settlement.TimeoutSeconds) * time.Second,
		QueueSize:   cfg.Settlement.QueueSize,
	}

	// El dispatcher necesita al handler y los use cases al dispatcher; se
	// construye primero sin handler y se ata después.
	dispatcher := queue.NewDispatcher(nil, dispatcherCfg, log)

	createSaleUC := sales.NewCreateSaleUseCase(
		txRunner, productRepo, saleRepo, dispatcher,
		sales.DefaultNumberGenerator, clk, log,
	)
	settlementUC := sales.NewSettlementUseCase(
		txRunner, saleRepo, ledgerUC, createSaleUC, statusCache, clk, log,
	)
	dispatcher.SetHandler(settlementUC)

	reportUC := sales.NewReportUseCase(saleRepo)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	dispatcher.Start(workerCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC: ledgerUC,
		SaleUC:   createSaleUC,
		ReportUC: reportUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Primero se deja de aceptar trabajo nuevo (servidor abajo), luego se
	// drenan las tareas encoladas.
	dispatcher.Stop()
	stopWorkers()

	log.Info().Msg("aplicación detenida")
}
