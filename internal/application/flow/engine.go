package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	domainflow "github.com/jhoicas/produccion-api/internal/domain/flow"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// StageExecutionUseCase es el motor de transición de etapas: start, complete,
// hold y resume sobre las etapas materializadas de una orden, más el snapshot
// de solo lectura GetFlowStatus.
//
// Cada mutación corre dentro de una transacción con la fila de la orden
// bloqueada (SELECT FOR UPDATE), así las operaciones concurrentes sobre una
// misma orden se serializan y el invariante "a lo sumo una etapa in_progress
// por orden" se sostiene bajo concurrencia. Órdenes distintas no compiten
// entre sí.
type StageExecutionUseCase struct {
	txRunner  TxRunner
	orderRepo repository.ProductionOrderRepository
	stageRepo repository.StageInstanceRepository
}

// NewStageExecutionUseCase construye el motor. orderRepo y stageRepo atados al
// pool se usan solo para lecturas (GetFlowStatus); las mutaciones reciben sus
// repos del TxRunner.
func NewStageExecutionUseCase(
	txRunner TxRunner,
	orderRepo repository.ProductionOrderRepository,
	stageRepo repository.StageInstanceRepository,
) *StageExecutionUseCase {
	return &StageExecutionUseCase{txRunner: txRunner, orderRepo: orderRepo, stageRepo: stageRepo}
}

// stageMutation aplica la transición específica de cada operación sobre la
// etapa objetivo. Recibe los repos de la tx por si la operación necesita
// efectos adicionales (complete → entry de longation).
type stageMutation func(
	ctx context.Context,
	order *entity.ProductionOrder,
	stages []*entity.StageInstance,
	target *entity.StageInstance,
	now time.Time,
	entryRepo repository.LongationEntryRepository,
	seqRepo repository.DocumentSequenceRepository,
) error

// runStageOp carga la orden con bloqueo de fila, ubica la etapa objetivo,
// aplica la mutación, persiste la etapa y recalcula el estado de flujo.
// Todo o nada: cualquier error revierte la transacción completa.
func (uc *StageExecutionUseCase) runStageOp(
	ctx context.Context,
	companyID, orderID string,
	stageNumber int,
	mutate stageMutation,
) (*dto.FlowStatusDTO, error) {
	var snapshot *dto.FlowStatusDTO
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.ProductionOrderRepository,
		stageRepo repository.StageInstanceRepository,
		entryRepo repository.LongationEntryRepository,
		seqRepo repository.DocumentSequenceRepository,
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
		if !order.FlowInitialized() {
			return domain.ErrConflict
		}

		stages, err := stageRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		var target *entity.StageInstance
		for _, s := range stages {
			if s.StageNumber == stageNumber {
				target = s
				break
			}
		}
		if target == nil {
			return domain.ErrNotFound
		}

		now := time.Now()
		if err := mutate(ctx, order, stages, target, now, entryRepo, seqRepo); err != nil {
			return err
		}
		target.UpdatedAt = now
		if err := stageRepo.Update(ctx, target); err != nil {
			return err
		}

		order.FlowStatus = domainflow.ComputeFlowStatus(stages)
		if err := orderRepo.UpdateFlow(ctx, order.ID, order.FlowStatus, nil); err != nil {
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

// StartStage pasa la etapa de pending a in_progress. Preconditions: la etapa
// anterior está completada (o es la etapa 1) y ninguna otra etapa de la orden
// está activa.
func (uc *StageExecutionUseCase) StartStage(ctx context.Context, companyID, actorID, orderID string, stageNumber int) (*dto.FlowStatusDTO, error) {
	return uc.runStageOp(ctx, companyID, orderID, stageNumber, func(
		_ context.Context,
		_ *entity.ProductionOrder,
		stages []*entity.StageInstance,
		target *entity.StageInstance,
		now time.Time,
		_ repository.LongationEntryRepository,
		_ repository.DocumentSequenceRepository,
	) error {
		if target.Status != entity.StageStatusPending {
			return domain.ErrInvalidTransition
		}
		if target.StageNumber > 1 {
			var prev *entity.StageInstance
			for _, s := range stages {
				if s.StageNumber == target.StageNumber-1 {
					prev = s
					break
				}
			}
			if prev == nil || prev.Status != entity.StageStatusCompleted {
				return domain.ErrPreviousStageIncomplete
			}
		}
		if active := domainflow.ActiveStage(stages); active != nil {
			return domain.ErrStageAlreadyActive
		}
		target.Status = entity.StageStatusInProgress
		target.StartedAt = &now
		target.StartedBy = actorID
		return nil
	})
}

// CompleteStage cierra una etapa in_progress registrando métricas y calidad.
// Si ByproductQuantity > 0, agrega el entry al ledger de longation en la
// misma transacción (exactamente una vez: re-completar se rechaza arriba).
func (uc *StageExecutionUseCase) CompleteStage(
	ctx context.Context,
	companyID, actorID, orderID string,
	stageNumber int,
	in dto.CompleteStageRequest,
) (*dto.FlowStatusDTO, error) {
	if !domainflow.ValidQualityGrade(in.QualityGrade) {
		return nil, domain.ErrInvalidInput
	}
	if in.ActualQuantity.IsNegative() || in.DefectQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	byproduct := decimal.Zero
	if in.ByproductQuantity != nil {
		if in.ByproductQuantity.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		byproduct = *in.ByproductQuantity
	}

	return uc.runStageOp(ctx, companyID, orderID, stageNumber, func(
		ctx context.Context,
		order *entity.ProductionOrder,
		_ []*entity.StageInstance,
		target *entity.StageInstance,
		now time.Time,
		entryRepo repository.LongationEntryRepository,
		seqRepo repository.DocumentSequenceRepository,
	) error {
		// Completar solo desde in_progress: una etapa en hold debe
		// reanudarse antes de registrar resultados.
		if target.Status != entity.StageStatusInProgress {
			return domain.ErrInvalidTransition
		}
		target.Status = entity.StageStatusCompleted
		target.CompletedAt = &now
		target.CompletedBy = actorID
		target.ActualQuantity = in.ActualQuantity
		target.DefectQuantity = in.DefectQuantity
		target.QualityGrade = in.QualityGrade
		target.QualityNotes = in.QualityNotes
		target.Images = in.Images

		if byproduct.IsPositive() {
			seq, err := seqRepo.Next(ctx, order.CompanyID, "LNG", now.Year())
			if err != nil {
				return err
			}
			entry := &entity.LongationEntry{
				ID:                uuid.New().String(),
				CompanyID:         order.CompanyID,
				EntryNumber:       fmt.Sprintf("LNG-%d-%04d", now.Year(), seq),
				SourceOrderID:     order.ID,
				SourceStageNumber: target.StageNumber,
				SourceModule:      target.StageType,
				Quantity:          byproduct,
				AvailableQuantity: byproduct,
				Unit:              order.Unit,
				CreatedAt:         now,
			}
			if err := entryRepo.Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// HoldStage suspende una etapa activa sin perder su estado acumulado.
func (uc *StageExecutionUseCase) HoldStage(ctx context.Context, companyID, actorID, orderID string, stageNumber int, reason string) (*dto.FlowStatusDTO, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.runStageOp(ctx, companyID, orderID, stageNumber, func(
		_ context.Context,
		_ *entity.ProductionOrder,
		_ []*entity.StageInstance,
		target *entity.StageInstance,
		now time.Time,
		_ repository.LongationEntryRepository,
		_ repository.DocumentSequenceRepository,
	) error {
		if target.Status != entity.StageStatusInProgress {
			return domain.ErrInvalidTransition
		}
		target.Status = entity.StageStatusHeld
		target.HoldReason = reason
		target.HeldAt = &now
		target.HeldBy = actorID
		return nil
	})
}

// ResumeStage reanuda una etapa en hold y acumula la duración del hold.
func (uc *StageExecutionUseCase) ResumeStage(ctx context.Context, companyID, actorID, orderID string, stageNumber int) (*dto.FlowStatusDTO, error) {
	return uc.runStageOp(ctx, companyID, orderID, stageNumber, func(
		_ context.Context,
		_ *entity.ProductionOrder,
		_ []*entity.StageInstance,
		target *entity.StageInstance,
		now time.Time,
		_ repository.LongationEntryRepository,
		_ repository.DocumentSequenceRepository,
	) error {
		if target.Status != entity.StageStatusHeld {
			return domain.ErrInvalidTransition
		}
		target.Status = entity.StageStatusInProgress
		target.ResumedAt = &now
		target.ResumedBy = actorID
		if target.HeldAt != nil {
			target.HeldDuration += now.Sub(*target.HeldAt)
		}
		return nil
	})
}

// GetFlowStatus devuelve el snapshot actual del flujo con percentComplete.
// Lectura sin transacción ni bloqueo.
func (uc *StageExecutionUseCase) GetFlowStatus(ctx context.Context, companyID, orderID string) (*dto.FlowStatusDTO, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	stages, err := uc.stageRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(order, stages), nil
}
