package flow

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	domainflow "github.com/jhoicas/produccion-api/internal/domain/flow"
)

// buildSnapshot arma el FlowStatusDTO a partir de la orden y sus etapas.
// Las operaciones mutadoras lo devuelven ya refrescado para evitar un
// segundo fetch desde la UI.
func buildSnapshot(order *entity.ProductionOrder, stages []*entity.StageInstance) *dto.FlowStatusDTO {
	completed := 0
	stageDTOs := make([]dto.StageInstanceDTO, 0, len(stages))
	for _, s := range stages {
		if s.Status == entity.StageStatusCompleted {
			completed++
		}
		stageDTOs = append(stageDTOs, dto.StageInstanceDTO{
			StageNumber:          s.StageNumber,
			StageType:            s.StageType,
			Status:               s.Status,
			QualityCheckRequired: s.QualityCheckRequired,
			PlannedQuantity:      s.PlannedQuantity,
			ActualQuantity:       s.ActualQuantity,
			DefectQuantity:       s.DefectQuantity,
			QualityGrade:         s.QualityGrade,
			QualityNotes:         s.QualityNotes,
			Images:               s.Images,
			StartedAt:            s.StartedAt,
			StartedBy:            s.StartedBy,
			CompletedAt:          s.CompletedAt,
			CompletedBy:          s.CompletedBy,
			HoldReason:           s.HoldReason,
			HeldAt:               s.HeldAt,
			HeldDurationMinutes:  decimal.NewFromFloat(s.HeldDuration.Minutes()).Round(2),
		})
	}
	return &dto.FlowStatusDTO{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		ProductType:     order.ProductType,
		FlowStatus:      order.FlowStatus,
		PercentComplete: domainflow.PercentComplete(stages),
		TotalStages:     len(stages),
		CompletedStages: completed,
		Stages:          stageDTOs,
	}
}
