package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// LongationFilter filtros para el listado del stock de longation.
type LongationFilter struct {
	SourceModule  string // vacío = todos
	OnlyAvailable bool   // solo entries con disponibilidad > 0
	From, To      *time.Time
	Limit, Offset int
}

// LongationEntryRepository define el puerto del ledger de longation.
// Los entries son append-only: solo AvailableQuantity cambia, y únicamente
// mediante TryReserve/Restore.
type LongationEntryRepository interface {
	Create(ctx context.Context, entry *entity.LongationEntry) error
	GetByID(ctx context.Context, id string) (*entity.LongationEntry, error)
	List(ctx context.Context, companyID string, filter LongationFilter) ([]*entity.LongationEntry, error)
	// TryReserve descuenta quantity de AvailableQuantity de forma condicional
	// y atómica (compare-and-decrement). Devuelve false si la disponibilidad
	// es insuficiente; nunca lee-y-escribe en dos pasos.
	TryReserve(ctx context.Context, entryID string, quantity decimal.Decimal) (bool, error)
	// Restore devuelve quantity a AvailableQuantity (cancelación de asignación).
	Restore(ctx context.Context, entryID string, quantity decimal.Decimal) error
}

// LongationAllocationRepository define el puerto para las asignaciones del ledger.
type LongationAllocationRepository interface {
	Create(ctx context.Context, alloc *entity.LongationAllocation) error
	GetByID(ctx context.Context, id string) (*entity.LongationAllocation, error)
	// GetForUpdate bloquea la fila de la asignación para las transiciones
	// allocated → used / cancelled.
	GetForUpdate(ctx context.Context, id string) (*entity.LongationAllocation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByEntry(ctx context.Context, entryID string) ([]*entity.LongationAllocation, error)
}
