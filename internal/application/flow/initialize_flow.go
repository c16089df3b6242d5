package flow

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

// InitializeFlowUseCase materializa las etapas de una orden aprobada a partir
// de la plantilla de su tipo de producto. La copia queda congelada: ediciones
// posteriores de la plantilla no alteran órdenes en curso.
type InitializeFlowUseCase struct {
	txRunner     TxRunner
	templateRepo repository.StageTemplateRepository
}

// NewInitializeFlowUseCase construye el caso de uso.
func NewInitializeFlowUseCase(txRunner TxRunner, templateRepo repository.StageTemplateRepository) *InitializeFlowUseCase {
	return &InitializeFlowUseCase{txRunner: txRunner, templateRepo: templateRepo}
}

// Initialize crea StageInstance[1..N] en estado pending y marca el flujo como
// not_started. Re-inicializar se rechaza con ErrFlowAlreadyInitialized; el
// bloqueo de la fila de la orden evita la doble inicialización concurrente.
func (uc *InitializeFlowUseCase) Initialize(ctx context.Context, companyID, actorID, orderID string) (*dto.FlowStatusDTO, error) {
	if orderID == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}

	var snapshot *dto.FlowStatusDTO
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.ProductionOrderRepository,
		stageRepo repository.StageInstanceRepository,
		_ repository.LongationEntryRepository,
		_ repository.DocumentSequenceRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if order.ApprovalStatus != entity.ApprovalStatusApproved {
			return domain.ErrOrderNotApproved
		}
		if order.FlowInitialized() {
			return domain.ErrFlowAlreadyInitialized
		}

		template, err := uc.templateRepo.Resolve(ctx, companyID, order.ProductType)
		if err != nil {
			return err
		}

		now := time.Now()
		stages := make([]*entity.StageInstance, 0, len(template.Stages))
		for _, def := range template.Stages {
			stages = append(stages, &entity.StageInstance{
				ID:                   uuid.New().String(),
				OrderID:              order.ID,
				StageNumber:          def.StageNumber,
				StageType:            def.StageType,
				Status:               entity.StageStatusPending,
				QualityCheckRequired: def.QualityCheckRequired,
				PlannedQuantity:      order.Quantity,
				ActualQuantity:       decimal.Zero,
				DefectQuantity:       decimal.Zero,
				CreatedAt:            now,
				UpdatedAt:            now,
			})
		}
		if err := stageRepo.CreateAll(ctx, stages); err != nil {
			return err
		}

		order.FlowStatus = entity.FlowStatusNotStarted
		order.FlowInitializedAt = &now
		if err := orderRepo.UpdateFlow(ctx, order.ID, order.FlowStatus, order.FlowInitializedAt); err != nil {
			return err
		}
		snapshot = buildSnapshot(order, stages)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
