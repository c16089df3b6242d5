package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FlowStatusCountResult conteo de órdenes por estado de flujo.
type FlowStatusCountResult struct {
	FlowStatus string
	Count      int64
}

// StageTypeCountResult conteo de etapas activas por tipo de etapa.
type StageTypeCountResult struct {
	StageType string
	Count     int64
}

// LongationModuleSummaryResult disponibilidad del ledger agrupada por módulo origen.
type LongationModuleSummaryResult struct {
	SourceModule      string
	EntryCount        int64
	TotalQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
}

// StageTypeSummaryResult métricas históricas por tipo de etapa
// (identificación de cuellos de botella).
type StageTypeSummaryResult struct {
	StageType          string
	CompletedCount     int64
	AvgDurationMinutes decimal.Decimal // sin descontar el tiempo en hold
	AvgHoldMinutes     decimal.Decimal
	TotalActual        decimal.Decimal
	TotalDefects       decimal.Decimal
}

// ThroughputResult métricas agregadas de una ventana de tiempo.
type ThroughputResult struct {
	OrdersCompleted    int64
	StagesCompleted    int64
	TotalActual        decimal.Decimal
	TotalDefects       decimal.Decimal
	TotalByproduct     decimal.Decimal
	AvgDurationMinutes decimal.Decimal
}

// FlowAnalyticsRepository consultas de solo lectura sobre el histórico de
// etapas y del ledger. Recalcular dos veces sobre los mismos datos produce
// el mismo resultado; nunca muta estado.
type FlowAnalyticsRepository interface {
	CountOrdersByFlowStatus(ctx context.Context, companyID string) ([]FlowStatusCountResult, error)
	CountActiveStagesByType(ctx context.Context, companyID string) ([]StageTypeCountResult, error)
	GetLongationSummary(ctx context.Context, companyID string) ([]LongationModuleSummaryResult, error)
	GetStageSummary(ctx context.Context, companyID, stageType string, from, to time.Time) ([]StageTypeSummaryResult, error)
	GetThroughput(ctx context.Context, companyID string, from, to time.Time) (*ThroughputResult, error)
}
