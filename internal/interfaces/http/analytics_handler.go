package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/analytics"
	"github.com/jhoicas/produccion-api/internal/application/dto"
)

// AnalyticsHandler maneja las consultas de dashboard y analítica del flujo (protegido).
type AnalyticsHandler struct {
	uc *analytics.FlowAnalyticsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.FlowAnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Contadores del dashboard de producción
// @Tags         flow-analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.FlowDashboardDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/production/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	out, err := h.uc.GetDashboard(c.Context(), companyID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Métricas por tipo de etapa (cuellos de botella)
// @Tags         flow-analytics
// @Security     Bearer
// @Produce      json
// @Param        stage_type  query  string  false  "Filtrar por tipo de etapa"
// @Param        date_from   query  string  false  "Desde (RFC 3339 o YYYY-MM-DD)"
// @Param        date_to     query  string  false  "Hasta (RFC 3339 o YYYY-MM-DD)"
// @Success      200  {array}   dto.StageSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/production/summary [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	from, err := parseDateQuery(c.Query("date_from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_from inválido"})
	}
	to, err := parseDateQuery(c.Query("date_to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_to inválido"})
	}
	rows, err := h.uc.GetSummary(c.Context(), companyID, c.Query("stage_type"), from, to)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"total":   len(rows),
		"summary": rows,
	})
}

// Analytics godoc
// @Summary      Throughput de una ventana de tiempo
// @Tags         flow-analytics
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  false  "7d | 30d | 90d | 1y (default 30d)"
// @Success      200  {object}  dto.FlowAnalyticsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/production/analytics [get]
func (h *AnalyticsHandler) Analytics(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	period := c.Query("period", "30d")
	out, err := h.uc.GetAnalytics(c.Context(), companyID, period)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// parseDateQuery acepta RFC 3339 o fecha corta YYYY-MM-DD; vacío devuelve nil.
func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
