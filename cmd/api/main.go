package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/produccion-api/docs"
	appanalytics "github.com/jhoicas/produccion-api/internal/application/analytics"
	appflow "github.com/jhoicas/produccion-api/internal/application/flow"
	appstock "github.com/jhoicas/produccion-api/internal/application/stock"
	"github.com/jhoicas/produccion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/produccion-api/internal/interfaces/http"
	"github.com/jhoicas/produccion-api/pkg/config"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// @title        Producción API
// @description  Módulo de ejecución de manufactura: flujo de etapas por orden,
// @description  stock de longation y analítica de producción.
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

	orderRepo := postgres.NewProductionOrderRepository(pool)
	stageRepo := postgres.NewStageInstanceRepository(pool)
	templateRepo := postgres.NewStageTemplateRepository(pool)
	entryRepo := postgres.NewLongationEntryRepository(pool)
	analyticsRepo := postgres.NewFlowAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	initializeFlowUC := appflow.NewInitializeFlowUseCase(txRunner, templateRepo)
	stageEngineUC := appflow.NewStageExecutionUseCase(txRunner, orderRepo, stageRepo)
	longationStockUC := appstock.NewLongationStockUseCase(txRunner, entryRepo)
	flowAnalyticsUC := appanalytics.NewFlowAnalyticsUseCase(analyticsRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Producción API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InitializeFlow: initializeFlowUC,
		StageEngine:    stageEngineUC,
		LongationStock: longationStockUC,
		FlowAnalytics:  flowAnalyticsUC,
		JWTSecret:      cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
