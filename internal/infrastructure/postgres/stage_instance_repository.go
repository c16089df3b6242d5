package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.StageInstanceRepository = (*StageInstanceRepo)(nil)

// StageInstanceRepo implementación sobre PostgreSQL (usable con pool o tx).
// held_duration se persiste en segundos (BIGINT).
type StageInstanceRepo struct {
	q Querier
}

// NewStageInstanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStageInstanceRepository(q Querier) *StageInstanceRepo {
	return &StageInstanceRepo{q: q}
}

// CreateAll inserta las etapas materializadas de una orden (inicialización).
func (r *StageInstanceRepo) CreateAll(ctx context.Context, stages []*entity.StageInstance) error {
	query := `
		INSERT INTO production_stages (
			id, order_id, stage_number, stage_type, status, quality_check_required,
			planned_quantity, actual_quantity, defect_quantity, images,
			held_duration_seconds, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, s := range stages {
		_, err := r.q.Exec(ctx, query,
			s.ID, s.OrderID, s.StageNumber, s.StageType, s.Status, s.QualityCheckRequired,
			s.PlannedQuantity, s.ActualQuantity, s.DefectQuantity, s.Images,
			int64(s.HeldDuration.Seconds()), s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create stage %d: %w", s.StageNumber, err)
		}
	}
	return nil
}

// ListByOrder devuelve las etapas de la orden ordenadas por stage_number.
func (r *StageInstanceRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StageInstance, error) {
	query := `
		SELECT id, order_id, stage_number, stage_type, status, quality_check_required,
		       planned_quantity, actual_quantity, defect_quantity,
		       COALESCE(quality_grade, ''), COALESCE(quality_notes, ''), images,
		       started_at, COALESCE(started_by, ''),
		       completed_at, COALESCE(completed_by, ''),
		       COALESCE(hold_reason, ''), held_at, COALESCE(held_by, ''),
		       resumed_at, COALESCE(resumed_by, ''),
		       held_duration_seconds, created_at, updated_at
		FROM production_stages
		WHERE order_id = $1
		ORDER BY stage_number ASC`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []*entity.StageInstance
	for rows.Next() {
		var s entity.StageInstance
		var heldSeconds int64
		if err := rows.Scan(
			&s.ID, &s.OrderID, &s.StageNumber, &s.StageType, &s.Status, &s.QualityCheckRequired,
			&s.PlannedQuantity, &s.ActualQuantity, &s.DefectQuantity,
			&s.QualityGrade, &s.QualityNotes, &s.Images,
			&s.StartedAt, &s.StartedBy,
			&s.CompletedAt, &s.CompletedBy,
			&s.HoldReason, &s.HeldAt, &s.HeldBy,
			&s.ResumedAt, &s.ResumedBy,
			&heldSeconds, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("list stages scan: %w", err)
		}
		s.HeldDuration = time.Duration(heldSeconds) * time.Second
		stages = append(stages, &s)
	}
	return stages, rows.Err()
}

// Update persiste el estado completo de una etapa tras una transición.
func (r *StageInstanceRepo) Update(ctx context.Context, stage *entity.StageInstance) error {
	query := `
		UPDATE production_stages
		SET status = $2, actual_quantity = $3, defect_quantity = $4,
		    quality_grade = NULLIF($5, ''), quality_notes = NULLIF($6, ''), images = $7,
		    started_at = $8, started_by = NULLIF($9, ''),
		    completed_at = $10, completed_by = NULLIF($11, ''),
		    hold_reason = NULLIF($12, ''), held_at = $13, held_by = NULLIF($14, ''),
		    resumed_at = $15, resumed_by = NULLIF($16, ''),
		    held_duration_seconds = $17, updated_at = $18
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		stage.ID, stage.Status, stage.ActualQuantity, stage.DefectQuantity,
		stage.QualityGrade, stage.QualityNotes, stage.Images,
		stage.StartedAt, stage.StartedBy,
		stage.CompletedAt, stage.CompletedBy,
		stage.HoldReason, stage.HeldAt, stage.HeldBy,
		stage.ResumedAt, stage.ResumedBy,
		int64(stage.HeldDuration.Seconds()), stage.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	return nil
}
