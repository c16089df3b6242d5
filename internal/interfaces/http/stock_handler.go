package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/application/stock"
)

// StockHandler maneja las peticiones HTTP del stock de longation (protegido).
type StockHandler struct {
	uc *stock.LongationStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.LongationStockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Listar stock de longation
// @Tags         longation-stock
// @Security     Bearer
// @Produce      json
// @Param        source_module   query  string  false  "Filtrar por módulo origen (stage type)"
// @Param        only_available  query  bool    false  "Solo entries con disponibilidad > 0"
// @Param        limit           query  int     false  "Tamaño de página (default 20)"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.LongationEntryDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/longation [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.ListLongationRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	entries, err := h.uc.List(c.Context(), companyID, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"total":   len(entries),
		"entries": entries,
	})
}

// Allocate godoc
// @Summary      Reservar cantidad de un entry de longation
// @Description  Descuento atómico condicional: si otra orden ganó la carrera y no
//               queda disponibilidad, responde 409 y el caller debe re-consultar.
// @Tags         longation-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        entry_id  path  string               true  "ID del entry"
// @Param        body      body  dto.AllocateRequest  true  "consumer_order_id, quantity"
// @Success      201  {object}  dto.AllocationDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/longation/{entry_id}/allocate [post]
func (h *StockHandler) Allocate(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	alloc, err := h.uc.Allocate(c.Context(), companyID, c.Params("entry_id"), in.ConsumerOrderID, in.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(alloc)
}

// Use godoc
// @Summary      Marcar una asignación como consumida
// @Tags         longation-stock
// @Security     Bearer
// @Produce      json
// @Param        allocation_id  path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.AllocationDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/longation/allocations/{allocation_id}/use [post]
func (h *StockHandler) Use(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	alloc, err := h.uc.Use(c.Context(), companyID, c.Params("allocation_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(alloc)
}

// Cancel godoc
// @Summary      Cancelar una asignación y devolver la cantidad al entry
// @Tags         longation-stock
// @Security     Bearer
// @Produce      json
// @Param        allocation_id  path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.AllocationDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/longation/allocations/{allocation_id}/cancel [post]
func (h *StockHandler) Cancel(c *fiber.Ctx) error {
	companyID, _, err := actor(c)
	if err != nil {
		return err
	}
	alloc, err := h.uc.Cancel(c.Context(), companyID, c.Params("allocation_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(alloc)
}
