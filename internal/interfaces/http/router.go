package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/analytics"
	"github.com/jhoicas/produccion-api/internal/application/flow"
	"github.com/jhoicas/produccion-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InitializeFlow *flow.InitializeFlowUseCase
	StageEngine    *flow.StageExecutionUseCase
	LongationStock *stock.LongationStockUseCase
	FlowAnalytics  *analytics.FlowAnalyticsUseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todo el módulo es protegido: el
// contexto actor/empresa llega en el Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Flujo de producción
	production := api.Group("/production")
	flowHandler := NewFlowHandler(deps.InitializeFlow, deps.StageEngine)
	production.Post("/:order_id/flow/initialize", flowHandler.Initialize)
	production.Get("/:order_id/flow", flowHandler.GetStatus)
	production.Post("/:order_id/stages/:n/start", flowHandler.StartStage)
	production.Post("/:order_id/stages/:n/complete", flowHandler.CompleteStage)
	production.Post("/:order_id/stages/:n/hold", flowHandler.HoldStage)
	production.Post("/:order_id/stages/:n/resume", flowHandler.ResumeStage)

	// Dashboard y analítica (solo lectura)
	analyticsHandler := NewAnalyticsHandler(deps.FlowAnalytics)
	production.Get("/dashboard", analyticsHandler.Dashboard)
	production.Get("/summary", analyticsHandler.Summary)
	production.Get("/analytics", analyticsHandler.Analytics)

	// Stock de longation
	longation := api.Group("/longation")
	stockHandler := NewStockHandler(deps.LongationStock)
	longation.Get("/", stockHandler.List)
	longation.Post("/:entry_id/allocate", stockHandler.Allocate)
	longation.Post("/allocations/:allocation_id/use", stockHandler.Use)
	longation.Post("/allocations/:allocation_id/cancel", stockHandler.Cancel)
}
