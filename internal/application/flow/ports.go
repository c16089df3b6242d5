package flow

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que cada operación del motor de
// etapas sea todo-o-nada (etapa + estado de flujo + entry de longation).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.ProductionOrderRepository,
		stageRepo repository.StageInstanceRepository,
		entryRepo repository.LongationEntryRepository,
		seqRepo repository.DocumentSequenceRepository,
	) error) error
}
