package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrOrderNotFound          = errors.New("orden de producción no encontrada")
	ErrOrderNotApproved       = errors.New("la orden no está aprobada")
	ErrFlowAlreadyInitialized = errors.New("el flujo de producción ya fue inicializado")
	ErrTemplateNotFound       = errors.New("no hay plantilla de etapas para el tipo de producto")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")

	// Violaciones de secuencia del motor de etapas.
	ErrPreviousStageIncomplete = errors.New("la etapa anterior no está completada")
	ErrStageAlreadyActive      = errors.New("la orden ya tiene una etapa en progreso")
	ErrInvalidTransition       = errors.New("transición de etapa inválida")

	// Ledger de longation.
	ErrInsufficientStock = errors.New("stock de longation insuficiente")
)
