// Package flow contiene los servicios de dominio puros del flujo de
// producción: derivación del estado de la orden y validaciones de calidad.
package flow

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// ComputeFlowStatus deriva el estado de la orden a partir de los estados de
// sus etapas. Es una función pura: se recalcula en cada mutación en lugar de
// almacenarse de forma independiente, para que no pueda divergir.
//
//	todas completadas            → completed
//	alguna en hold               → on_hold
//	alguna en progreso o parcial → in_progress
//	todas pendientes             → not_started
func ComputeFlowStatus(stages []*entity.StageInstance) string {
	if len(stages) == 0 {
		return entity.FlowStatusNotStarted
	}
	completed := 0
	for _, s := range stages {
		switch s.Status {
		case entity.StageStatusHeld:
			return entity.FlowStatusOnHold
		case entity.StageStatusCompleted:
			completed++
		}
	}
	if completed == len(stages) {
		return entity.FlowStatusCompleted
	}
	for _, s := range stages {
		if s.Status == entity.StageStatusInProgress {
			return entity.FlowStatusInProgress
		}
	}
	if completed > 0 {
		return entity.FlowStatusInProgress
	}
	return entity.FlowStatusNotStarted
}

// PercentComplete devuelve el avance de la orden: etapas completadas sobre
// etapas totales, en porcentaje con dos decimales.
func PercentComplete(stages []*entity.StageInstance) decimal.Decimal {
	if len(stages) == 0 {
		return decimal.Zero
	}
	completed := 0
	for _, s := range stages {
		if s.Status == entity.StageStatusCompleted {
			completed++
		}
	}
	return decimal.NewFromInt(int64(completed)).
		Div(decimal.NewFromInt(int64(len(stages)))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// ValidQualityGrade verifica que el grado pertenezca a la escala definida.
// Un grado Reject se registra como calidad baja; no dispara reproceso
// automático ni altera la secuencia del flujo.
func ValidQualityGrade(grade string) bool {
	switch grade {
	case entity.QualityGradeAPlus, entity.QualityGradeA, entity.QualityGradeBPlus,
		entity.QualityGradeB, entity.QualityGradeC, entity.QualityGradeReject:
		return true
	}
	return false
}

// ActiveStage devuelve la etapa en progreso de la orden, o nil si no hay.
// Invariante de línea: a lo sumo una etapa por orden está in_progress.
func ActiveStage(stages []*entity.StageInstance) *entity.StageInstance {
	for _, s := range stages {
		if s.Status == entity.StageStatusInProgress {
			return s
		}
	}
	return nil
}
