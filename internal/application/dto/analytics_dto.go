package dto

import "github.com/shopspring/decimal"

// FlowDashboardDTO contadores para el dashboard de producción.
type FlowDashboardDTO struct {
	OrdersByStatus     map[string]int64            `json:"orders_by_status"`
	ActiveFlows        int64                       `json:"active_flows"`
	OnHoldFlows        int64                       `json:"on_hold_flows"`
	ActiveStagesByType []StageTypeCountDTO         `json:"active_stages_by_type"`
	LongationByModule  []LongationModuleSummaryDTO `json:"longation_by_module"`
}

// StageTypeCountDTO conteo de etapas activas por tipo.
type StageTypeCountDTO struct {
	StageType string `json:"stage_type"`
	Count     int64  `json:"count"`
}

// LongationModuleSummaryDTO disponibilidad del ledger por módulo origen.
type LongationModuleSummaryDTO struct {
	SourceModule      string          `json:"source_module"`
	EntryCount        int64           `json:"entry_count"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

// StageSummaryDTO métricas por tipo de etapa (cuellos de botella).
type StageSummaryDTO struct {
	StageType          string          `json:"stage_type"`
	CompletedCount     int64           `json:"completed_count"`
	AvgDurationMinutes decimal.Decimal `json:"avg_duration_minutes"`
	AvgHoldMinutes     decimal.Decimal `json:"avg_hold_minutes"`
	TotalActual        decimal.Decimal `json:"total_actual"`
	TotalDefects       decimal.Decimal `json:"total_defects"`
}

// FlowAnalyticsDTO resumen de throughput de una ventana de tiempo
// (period ∈ {7d, 30d, 90d, 1y}).
type FlowAnalyticsDTO struct {
	Period             string          `json:"period"`
	OrdersCompleted    int64           `json:"orders_completed"`
	StagesCompleted    int64           `json:"stages_completed"`
	TotalActual        decimal.Decimal `json:"total_actual"`
	TotalDefects       decimal.Decimal `json:"total_defects"`
	DefectRatePct      decimal.Decimal `json:"defect_rate_pct"`
	TotalByproduct     decimal.Decimal `json:"total_byproduct"`
	AvgDurationMinutes decimal.Decimal `json:"avg_duration_minutes"`
}
