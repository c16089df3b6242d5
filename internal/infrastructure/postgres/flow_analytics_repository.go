package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.FlowAnalyticsRepository = (*FlowAnalyticsRepo)(nil)

// FlowAnalyticsRepo consultas de solo lectura sobre el histórico de etapas y
// del ledger de longation.
type FlowAnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewFlowAnalyticsRepository construye el adaptador de analítica.
func NewFlowAnalyticsRepository(pool *pgxpool.Pool) *FlowAnalyticsRepo {
	return &FlowAnalyticsRepo{pool: pool}
}

// CountOrdersByFlowStatus agrupa las órdenes de la empresa por estado de flujo.
func (r *FlowAnalyticsRepo) CountOrdersByFlowStatus(ctx context.Context, companyID string) ([]repository.FlowStatusCountResult, error) {
	const query = `
	SELECT flow_status, COUNT(*)
	FROM production_orders
	WHERE company_id = $1
	GROUP BY flow_status`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("analytics.CountOrdersByFlowStatus: %w", err)
	}
	defer rows.Close()

	var results []repository.FlowStatusCountResult
	for rows.Next() {
		var row repository.FlowStatusCountResult
		if err := rows.Scan(&row.FlowStatus, &row.Count); err != nil {
			return nil, fmt.Errorf("analytics.CountOrdersByFlowStatus scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// CountActiveStagesByType cuenta las etapas in_progress por tipo de etapa.
// Una lectura rápida de dónde está el trabajo en la línea ahora mismo.
func (r *FlowAnalyticsRepo) CountActiveStagesByType(ctx context.Context, companyID string) ([]repository.StageTypeCountResult, error) {
	const query = `
	SELECT s.stage_type, COUNT(*)
	FROM production_stages s
	JOIN production_orders o ON o.id = s.order_id
	WHERE o.company_id = $1
	  AND s.status = 'in_progress'
	GROUP BY s.stage_type
	ORDER BY COUNT(*) DESC`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("analytics.CountActiveStagesByType: %w", err)
	}
	defer rows.Close()

	var results []repository.StageTypeCountResult
	for rows.Next() {
		var row repository.StageTypeCountResult
		if err := rows.Scan(&row.StageType, &row.Count); err != nil {
			return nil, fmt.Errorf("analytics.CountActiveStagesByType scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetLongationSummary agrupa el ledger por módulo origen con totales y
// disponibilidad vigente.
func (r *FlowAnalyticsRepo) GetLongationSummary(ctx context.Context, companyID string) ([]repository.LongationModuleSummaryResult, error) {
	const query = `
	SELECT source_module,
	       COUNT(*)                            AS entry_count,
	       COALESCE(SUM(quantity), 0)          AS total_quantity,
	       COALESCE(SUM(available_quantity), 0) AS available_quantity
	FROM longation_stock
	WHERE company_id = $1
	GROUP BY source_module
	ORDER BY source_module`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetLongationSummary: %w", err)
	}
	defer rows.Close()

	var results []repository.LongationModuleSummaryResult
	for rows.Next() {
		var row repository.LongationModuleSummaryResult
		if err := rows.Scan(&row.SourceModule, &row.EntryCount, &row.TotalQuantity, &row.AvailableQuantity); err != nil {
			return nil, fmt.Errorf("analytics.GetLongationSummary scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetStageSummary métricas por tipo de etapa sobre las completadas del rango.
// AvgDurationMinutes incluye el tiempo en hold; AvgHoldMinutes lo aísla para
// distinguir etapas lentas de etapas suspendidas (cuellos de botella).
func (r *FlowAnalyticsRepo) GetStageSummary(ctx context.Context, companyID, stageType string, from, to time.Time) ([]repository.StageTypeSummaryResult, error) {
	const query = `
	SELECT s.stage_type,
	       COUNT(*)                                                               AS completed_count,
	       COALESCE(AVG(EXTRACT(EPOCH FROM (s.completed_at - s.started_at)) / 60), 0) AS avg_duration_minutes,
	       COALESCE(AVG(s.held_duration_seconds / 60.0), 0)                       AS avg_hold_minutes,
	       COALESCE(SUM(s.actual_quantity), 0)                                    AS total_actual,
	       COALESCE(SUM(s.defect_quantity), 0)                                    AS total_defects
	FROM production_stages s
	JOIN production_orders o ON o.id = s.order_id
	WHERE o.company_id = $1
	  AND s.status = 'completed'
	  AND s.completed_at BETWEEN $2 AND $3
	  AND ($4 = '' OR s.stage_type = $4)
	GROUP BY s.stage_type
	ORDER BY avg_duration_minutes DESC`

	rows, err := r.pool.Query(ctx, query, companyID, from, to, stageType)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetStageSummary: %w", err)
	}
	defer rows.Close()

	var results []repository.StageTypeSummaryResult
	for rows.Next() {
		var row repository.StageTypeSummaryResult
		if err := rows.Scan(
			&row.StageType,
			&row.CompletedCount,
			&row.AvgDurationMinutes,
			&row.AvgHoldMinutes,
			&row.TotalActual,
			&row.TotalDefects,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetStageSummary scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetThroughput métricas agregadas de la ventana: etapas y órdenes
// completadas, cantidades y byproduct generado.
func (r *FlowAnalyticsRepo) GetThroughput(ctx context.Context, companyID string, from, to time.Time) (*repository.ThroughputResult, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*)
	     FROM production_orders
	     WHERE company_id = $1
	       AND flow_status = 'completed'
	       AND updated_at BETWEEN $2 AND $3)                                      AS orders_completed,
	    COUNT(s.id)                                                               AS stages_completed,
	    COALESCE(SUM(s.actual_quantity), 0)                                       AS total_actual,
	    COALESCE(SUM(s.defect_quantity), 0)                                       AS total_defects,
	    (SELECT COALESCE(SUM(quantity), 0)
	     FROM longation_stock
	     WHERE company_id = $1
	       AND created_at BETWEEN $2 AND $3)                                      AS total_byproduct,
	    COALESCE(AVG(EXTRACT(EPOCH FROM (s.completed_at - s.started_at)) / 60), 0) AS avg_duration_minutes
	FROM production_stages s
	JOIN production_orders o ON o.id = s.order_id
	WHERE o.company_id = $1
	  AND s.status = 'completed'
	  AND s.completed_at BETWEEN $2 AND $3`

	var result repository.ThroughputResult
	err := r.pool.QueryRow(ctx, query, companyID, from, to).Scan(
		&result.OrdersCompleted,
		&result.StagesCompleted,
		&result.TotalActual,
		&result.TotalDefects,
		&result.TotalByproduct,
		&result.AvgDurationMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetThroughput: %w", err)
	}
	return &result, nil
}
