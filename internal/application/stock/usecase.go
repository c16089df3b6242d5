// Package stock contiene los casos de uso del ledger de longation: material
// recuperado/merma que otras órdenes pueden reservar, consumir o devolver.
package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// LongationStockUseCase maneja el ciclo de vida de asignación del stock de
// longation. El ledger es el único recurso compartido entre órdenes: muchas
// pueden llamar Allocate contra el mismo entry al mismo tiempo, por eso el
// descuento es un compare-and-decrement atómico y nunca leer-luego-escribir.
// El perdedor de la carrera recibe ErrInsufficientStock y debe re-consultar
// disponibilidad; ninguna operación bloquea esperando stock.
type LongationStockUseCase struct {
	txRunner  TxRunner
	entryRepo repository.LongationEntryRepository
}

// NewLongationStockUseCase construye el caso de uso. entryRepo atado al pool
// se usa solo para listados.
func NewLongationStockUseCase(txRunner TxRunner, entryRepo repository.LongationEntryRepository) *LongationStockUseCase {
	return &LongationStockUseCase{txRunner: txRunner, entryRepo: entryRepo}
}

// Allocate reserva quantity de un entry para la orden consumidora.
// Precondición quantity ≤ availableQuantity, verificada por el descuento
// condicional: dos solicitudes concurrentes no pueden sobre-suscribir el entry.
func (uc *LongationStockUseCase) Allocate(ctx context.Context, companyID, entryID, consumerOrderID string, quantity decimal.Decimal) (*dto.AllocationDTO, error) {
	if entryID == "" || consumerOrderID == "" || !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	var out *dto.AllocationDTO
	err := uc.txRunner.RunStock(ctx, func(
		entryRepo repository.LongationEntryRepository,
		allocRepo repository.LongationAllocationRepository,
	) error {
		entry, err := entryRepo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		if entry.CompanyID != companyID {
			return domain.ErrForbidden
		}

		reserved, err := entryRepo.TryReserve(ctx, entryID, quantity)
		if err != nil {
			return err
		}
		if !reserved {
			return domain.ErrInsufficientStock
		}

		now := time.Now()
		alloc := &entity.LongationAllocation{
			ID:              uuid.New().String(),
			EntryID:         entryID,
			CompanyID:       companyID,
			ConsumerOrderID: consumerOrderID,
			Quantity:        quantity,
			Status:          entity.AllocationStatusAllocated,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := allocRepo.Create(ctx, alloc); err != nil {
			return err
		}
		out = allocationToDTO(alloc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Use marca una asignación como consumida (terminal: el material salió
// físicamente). Solo válido desde allocated.
func (uc *LongationStockUseCase) Use(ctx context.Context, companyID, allocationID string) (*dto.AllocationDTO, error) {
	return uc.transition(ctx, companyID, allocationID, entity.AllocationStatusUsed, false)
}

// Cancel cancela una asignación allocated y devuelve su cantidad al entry en
// la misma transacción, restaurando la disponibilidad exactamente al valor
// previo a la asignación.
func (uc *LongationStockUseCase) Cancel(ctx context.Context, companyID, allocationID string) (*dto.AllocationDTO, error) {
	return uc.transition(ctx, companyID, allocationID, entity.AllocationStatusCancelled, true)
}

func (uc *LongationStockUseCase) transition(ctx context.Context, companyID, allocationID, newStatus string, restore bool) (*dto.AllocationDTO, error) {
	if allocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *dto.AllocationDTO
	err := uc.txRunner.RunStock(ctx, func(
		entryRepo repository.LongationEntryRepository,
		allocRepo repository.LongationAllocationRepository,
	) error {
		alloc, err := allocRepo.GetForUpdate(ctx, allocationID)
		if err != nil {
			return err
		}
		if alloc == nil {
			return domain.ErrNotFound
		}
		if alloc.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if alloc.Status != entity.AllocationStatusAllocated {
			return domain.ErrInvalidTransition
		}
		if err := allocRepo.UpdateStatus(ctx, alloc.ID, newStatus); err != nil {
			return err
		}
		if restore {
			if err := entryRepo.Restore(ctx, alloc.EntryID, alloc.Quantity); err != nil {
				return err
			}
		}
		alloc.Status = newStatus
		out = allocationToDTO(alloc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List consulta el stock de longation con filtros para las UIs de consumo
// (por módulo origen, solo con disponibilidad, paginado).
func (uc *LongationStockUseCase) List(ctx context.Context, companyID string, req dto.ListLongationRequest) ([]dto.LongationEntryDTO, error) {
	req.DefaultPage()
	entries, err := uc.entryRepo.List(ctx, companyID, repository.LongationFilter{
		SourceModule:  req.SourceModule,
		OnlyAvailable: req.OnlyAvailable,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LongationEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LongationEntryDTO{
			ID:                e.ID,
			EntryNumber:       e.EntryNumber,
			SourceOrderID:     e.SourceOrderID,
			SourceStageNumber: e.SourceStageNumber,
			SourceModule:      e.SourceModule,
			Quantity:          e.Quantity,
			AvailableQuantity: e.AvailableQuantity,
			Unit:              e.Unit,
			CreatedAt:         e.CreatedAt,
		})
	}
	return out, nil
}

func allocationToDTO(a *entity.LongationAllocation) *dto.AllocationDTO {
	return &dto.AllocationDTO{
		ID:              a.ID,
		EntryID:         a.EntryID,
		ConsumerOrderID: a.ConsumerOrderID,
		Quantity:        a.Quantity,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
	}
}
