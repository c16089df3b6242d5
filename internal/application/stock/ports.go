package stock

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del ledger atados a esa tx. Mantiene atómicos el descuento
// condicional de disponibilidad y el registro de la asignación.
type TxRunner interface {
	RunStock(ctx context.Context, fn func(
		entryRepo repository.LongationEntryRepository,
		allocRepo repository.LongationAllocationRepository,
	) error) error
}
