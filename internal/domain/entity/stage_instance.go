package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una etapa de producción.
// Máquina de estados: pending → in_progress → completed (terminal);
// in_progress → held → in_progress (ciclo repetible).
// Completar solo es posible desde in_progress, nunca desde held.
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusHeld       = "held"
	StageStatusCompleted  = "completed"
	StageStatusSkipped    = "skipped"
)

// Grados de calidad registrados al completar una etapa.
const (
	QualityGradeAPlus  = "A+"
	QualityGradeA      = "A"
	QualityGradeBPlus  = "B+"
	QualityGradeB      = "B"
	QualityGradeC      = "C"
	QualityGradeReject = "Reject"
)

// StageInstance es una etapa materializada de una orden de producción:
// copia congelada de la definición de plantilla al momento de inicializar,
// más el estado de ejecución y las métricas capturadas al completar.
type StageInstance struct {
	ID                   string
	OrderID              string
	StageNumber          int // 1..N, fijo desde la inicialización
	StageType            string
	Status               string
	QualityCheckRequired bool

	PlannedQuantity decimal.Decimal
	ActualQuantity  decimal.Decimal
	DefectQuantity  decimal.Decimal
	QualityGrade    string // solo al completar
	QualityNotes    string
	Images          []string

	StartedAt   *time.Time
	StartedBy   string
	CompletedAt *time.Time
	CompletedBy string

	HoldReason   string
	HeldAt       *time.Time
	HeldBy       string
	ResumedAt    *time.Time
	ResumedBy    string
	HeldDuration time.Duration // acumulado entre ciclos hold/resume

	CreatedAt time.Time
	UpdatedAt time.Time
}
