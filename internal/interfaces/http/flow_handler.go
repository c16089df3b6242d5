package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/application/flow"
)

// FlowHandler maneja las peticiones HTTP del flujo de producción (protegido).
type FlowHandler struct {
	initUC   *flow.InitializeFlowUseCase
	engineUC *flow.StageExecutionUseCase
}

// NewFlowHandler construye el handler.
func NewFlowHandler(initUC *flow.InitializeFlowUseCase, engineUC *flow.StageExecutionUseCase) *FlowHandler {
	return &FlowHandler{initUC: initUC, engineUC: engineUC}
}

// actor extrae companyID y userID del token; responde 401 si faltan.
func actor(c *fiber.Ctx) (companyID, userID string, err error) {
	companyID = GetCompanyID(c)
	userID = GetUserID(c)
	if companyID == "" || userID == "" {
		return "", "", c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	return companyID, userID, nil
}

// Initialize godoc
// @Summary      Inicializar el flujo de producción de una orden aprobada
// @Tags         production-flow
// @Security     Bearer
// @Produce      json
// @Param        order_id  path  string  true  "ID de la orden"
// @Success      201  {object}  dto.FlowStatusDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{order_id}/flow/initialize [post]
func (h *FlowHandler) Initialize(c *fiber.Ctx) error {
	companyID, userID, err := actor(c)
	if err != nil {
		return err
	}
	snapshot, err := h.initUC.Initialize(c.Context(), companyID, userID, c.Params("order_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snapshot)
}

// StartStage godoc
// @Summary      Iniciar una etapa pendiente
// @Tags         production-flow
// @Security     Bearer
// @Produce      json
// @Param        order_id  path  string  true  "ID de la orden"
// @Param        n         path  int     true  "Número de etapa (1..N)"
// @Success      200  {object}  dto.FlowStatusDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{order_id}/stages/{n}/start [post]
func (h *FlowHandler) StartStage(c *fiber.Ctx) error {
	companyID, userID, err := actor(c)
	if err != nil {
		return err
	}
	stageNumber, err := c.ParamsInt("n")
	if err != nil || stageNumber < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número de etapa inválido"})
	}
	snapshot, err := h.engineUC.StartStage(c.Context(), companyID, userID, c.Params("order_id"), stageNumber)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snapshot)
}

// CompleteStage godoc
// @Summary      Completar una etapa en progreso con métricas y calidad
// @Tags         production-flow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        order_id  path  string                    true  "ID de la orden"
// @Param        n         path  int                       true  "Número de etapa (1..N)"
// @Param        body      body  dto.CompleteStageRequest  true  "actual_quantity, defect_quantity, quality_grade, quality_notes, images, byproduct_quantity"
// @Success      200  {object}  dto.FlowStatusDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{order_id}/stages/{n}/complete [post]
func (h *FlowHandler) CompleteStage(c *fiber.Ctx) error {
	companyID, userID, err := actor(c)
	if err != nil {
		return err
	}
	stageNumber, err := c.ParamsInt("n")
	if err != nil || stageNumber < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número de etapa inválido"})
	}
	var in dto.CompleteStageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	snapshot, err := h.engineUC.CompleteStage(c.Context(), companyID, userID, c.Params("order_id"), stageNumber, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snapshot)
}

// HoldStage godoc
// @Summary      Suspender una etapa activa
// @Tags         production-flow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        order_id  path  string                true  "ID de la orden"
// @Param        n         path  int                   true  "Número de etapa (1..N)"
// @Param        body      body  dto.HoldStageRequest  true  "reason"
// @Success      200  {object}  dto.FlowStatusDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{order_id}/stages/{n}/hold [post]
func (h *FlowHandler) HoldStage(c *fiber.Ctx) error {
	companyID, userID, err := actor(c)
	if err != nil {
		return err
	}
	stageNumber, err := c.ParamsInt("n")
	if err != nil || stageNumber < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número de etapa inválido"})
	}
	var in dto.HoldStageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	snapshot, err := h.engineUC.HoldStage(c.Context(), companyID, userID, c.Params("order_id"), stageNumber, in.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snapshot)
}

// ResumeStage godoc
// @Summary      Reanudar una etapa suspendida
// @Tags         production-flow
// @Security     Bearer
// @Produce      json
// @Param        order_id  path  string  true  "ID de la orden"
// @Param        n         path  int     true  "Número de etapa (1..N)"
// @Success      200  {object}  dto.FlowStatusDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{order_id}/stages/{n}/resume [post]
func (h *FlowHandler) ResumeStage(c *fiber.Ctx) error {
	companyID, userID, err := actor(c)
	if err != nil {
		return err
	}
	stageNumber, err := c.ParamsInt("n")
	if err != nil || stageNumber < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número de etapa inválido"})
	}
	snapshot, err := h.engineUC.ResumeStage(c.Context(), companyID, userID, c.Params("order_id"), stageNumber)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snapshot)
}

// GetStatus godoc
// @Summary      Snapshot del flujo con percentComplete
// @Tags         production-flow
// @Security     Bearer
// @Produce      json
// @Param        order_id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.FlowStatusDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/{order_id}/flow [get]
func (h *FlowHandler) GetStatus(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	snapshot, err := h.engineUC.GetFlowStatus(c.Context(), companyID, c.Params("order_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snapshot)
}
