package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
)

// errorResponse traduce los errores de dominio a respuestas HTTP.
// Las violaciones de secuencia y el conflicto de asignación responden 409:
// el caller debe re-consultar el estado y decidir (las asignaciones son el
// único caso pensado para reintentar).
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "orden de producción no encontrada"})
	case errors.Is(err, domain.ErrTemplateNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "TEMPLATE_NOT_FOUND", Message: "sin plantilla de etapas para el tipo de producto"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrOrderNotApproved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORDER_NOT_APPROVED", Message: "la orden no está aprobada"})
	case errors.Is(err, domain.ErrFlowAlreadyInitialized):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_INITIALIZED", Message: "el flujo ya fue inicializado"})
	case errors.Is(err, domain.ErrPreviousStageIncomplete):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PREVIOUS_STAGE_INCOMPLETE", Message: "la etapa anterior no está completada"})
	case errors.Is(err, domain.ErrStageAlreadyActive):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STAGE_ALREADY_ACTIVE", Message: "la orden ya tiene una etapa en progreso"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de etapa inválida"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock de longation insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
