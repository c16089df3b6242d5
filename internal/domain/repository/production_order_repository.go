package repository

import (
	"context"
	"time"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// ProductionOrderRepository define el puerto de persistencia para órdenes de producción.
type ProductionOrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) para
	// serializar las operaciones de flujo de una misma orden.
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error)
	// UpdateFlow persiste el estado de flujo derivado y, si se pasa,
	// la marca de inicialización.
	UpdateFlow(ctx context.Context, orderID, flowStatus string, initializedAt *time.Time) error
}

// StageInstanceRepository define el puerto para las etapas materializadas de una orden.
type StageInstanceRepository interface {
	CreateAll(ctx context.Context, stages []*entity.StageInstance) error
	// ListByOrder devuelve las etapas ordenadas por StageNumber ascendente.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.StageInstance, error)
	Update(ctx context.Context, stage *entity.StageInstance) error
}
