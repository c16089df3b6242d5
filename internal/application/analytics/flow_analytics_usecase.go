// Package analytics contiene los casos de uso de solo lectura sobre el
// histórico de etapas y del ledger: dashboard, resumen por tipo de etapa y
// analítica por período. Nunca muta estado.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// Períodos soportados por GetAnalytics.
var analyticsPeriods = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// FlowAnalyticsUseCase proyecciones del flujo de producción para dashboard y reportes.
type FlowAnalyticsUseCase struct {
	analyticsRepo repository.FlowAnalyticsRepository
}

// NewFlowAnalyticsUseCase construye el caso de uso.
func NewFlowAnalyticsUseCase(analyticsRepo repository.FlowAnalyticsRepository) *FlowAnalyticsUseCase {
	return &FlowAnalyticsUseCase{analyticsRepo: analyticsRepo}
}

// GetDashboard arma los contadores del dashboard de producción.
//
// Tres consultas en paralelo:
//  1. CountOrdersByFlowStatus → órdenes por estado de flujo
//  2. CountActiveStagesByType → etapas in_progress por tipo
//  3. GetLongationSummary     → disponibilidad del ledger por módulo
func (uc *FlowAnalyticsUseCase) GetDashboard(ctx context.Context, companyID string) (*dto.FlowDashboardDTO, error) {
	type statusResult struct {
		rows []repository.FlowStatusCountResult
		err  error
	}
	type stagesResult struct {
		rows []repository.StageTypeCountResult
		err  error
	}
	type longationResult struct {
		rows []repository.LongationModuleSummaryResult
		err  error
	}

	statusCh := make(chan statusResult, 1)
	stagesCh := make(chan stagesResult, 1)
	longationCh := make(chan longationResult, 1)

	go func() {
		rows, err := uc.analyticsRepo.CountOrdersByFlowStatus(ctx, companyID)
		statusCh <- statusResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.CountActiveStagesByType(ctx, companyID)
		stagesCh <- stagesResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetLongationSummary(ctx, companyID)
		longationCh <- longationResult{rows, err}
	}()

	status := <-statusCh
	stages := <-stagesCh
	longation := <-longationCh
	if status.err != nil {
		return nil, status.err
	}
	if stages.err != nil {
		return nil, stages.err
	}
	if longation.err != nil {
		return nil, longation.err
	}

	out := &dto.FlowDashboardDTO{
		OrdersByStatus:     make(map[string]int64, len(status.rows)),
		ActiveStagesByType: make([]dto.StageTypeCountDTO, 0, len(stages.rows)),
		LongationByModule:  make([]dto.LongationModuleSummaryDTO, 0, len(longation.rows)),
	}
	for _, r := range status.rows {
		out.OrdersByStatus[r.FlowStatus] = r.Count
		switch r.FlowStatus {
		case entity.FlowStatusInProgress:
			out.ActiveFlows = r.Count
		case entity.FlowStatusOnHold:
			out.OnHoldFlows = r.Count
		}
	}
	for _, r := range stages.rows {
		out.ActiveStagesByType = append(out.ActiveStagesByType, dto.StageTypeCountDTO{
			StageType: r.StageType,
			Count:     r.Count,
		})
	}
	for _, r := range longation.rows {
		out.LongationByModule = append(out.LongationByModule, dto.LongationModuleSummaryDTO{
			SourceModule:      r.SourceModule,
			EntryCount:        r.EntryCount,
			TotalQuantity:     r.TotalQuantity,
			AvailableQuantity: r.AvailableQuantity,
		})
	}
	return out, nil
}

// GetSummary devuelve las métricas por tipo de etapa, filtrables por tipo y
// rango de fechas. Fechas vacías = últimos 30 días.
func (uc *FlowAnalyticsUseCase) GetSummary(ctx context.Context, companyID, stageType string, from, to *time.Time) ([]dto.StageSummaryDTO, error) {
	now := time.Now()
	end := now
	if to != nil {
		end = *to
	}
	start := end.Add(-30 * 24 * time.Hour)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return nil, domain.ErrInvalidInput
	}

	rows, err := uc.analyticsRepo.GetStageSummary(ctx, companyID, stageType, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StageSummaryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StageSummaryDTO{
			StageType:          r.StageType,
			CompletedCount:     r.CompletedCount,
			AvgDurationMinutes: r.AvgDurationMinutes,
			AvgHoldMinutes:     r.AvgHoldMinutes,
			TotalActual:        r.TotalActual,
			TotalDefects:       r.TotalDefects,
		})
	}
	return out, nil
}

// GetAnalytics devuelve el resumen de throughput del período indicado.
func (uc *FlowAnalyticsUseCase) GetAnalytics(ctx context.Context, companyID, period string) (*dto.FlowAnalyticsDTO, error) {
	window, ok := analyticsPeriods[period]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	tp, err := uc.analyticsRepo.GetThroughput(ctx, companyID, now.Add(-window), now)
	if err != nil {
		return nil, err
	}

	defectRate := decimal.Zero
	if tp.TotalActual.IsPositive() {
		defectRate = tp.TotalDefects.
			Div(tp.TotalActual.Add(tp.TotalDefects)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return &dto.FlowAnalyticsDTO{
		Period:             period,
		OrdersCompleted:    tp.OrdersCompleted,
		StagesCompleted:    tp.StagesCompleted,
		TotalActual:        tp.TotalActual,
		TotalDefects:       tp.TotalDefects,
		DefectRatePct:      defectRate,
		TotalByproduct:     tp.TotalByproduct,
		AvgDurationMinutes: tp.AvgDurationMinutes,
	}, nil
}
