package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StageInstanceDTO representación de una etapa en las respuestas de flujo.
type StageInstanceDTO struct {
	StageNumber          int              `json:"stage_number"`
	StageType            string           `json:"stage_type"`
	Status               string           `json:"status"`
	QualityCheckRequired bool             `json:"quality_check_required"`
	PlannedQuantity      decimal.Decimal  `json:"planned_quantity"`
	ActualQuantity       decimal.Decimal  `json:"actual_quantity"`
	DefectQuantity       decimal.Decimal  `json:"defect_quantity"`
	QualityGrade         string           `json:"quality_grade,omitempty"`
	QualityNotes         string           `json:"quality_notes,omitempty"`
	Images               []string         `json:"images,omitempty"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	StartedBy            string           `json:"started_by,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	CompletedBy          string           `json:"completed_by,omitempty"`
	HoldReason           string           `json:"hold_reason,omitempty"`
	HeldAt               *time.Time       `json:"held_at,omitempty"`
	HeldDurationMinutes  decimal.Decimal  `json:"held_duration_minutes"`
}

// FlowStatusDTO snapshot del flujo de una orden. Lo devuelve GET status y
// también cada operación mutadora, para que la UI no tenga que re-consultar.
type FlowStatusDTO struct {
	OrderID         string             `json:"order_id"`
	OrderNumber     string             `json:"order_number"`
	ProductType     string             `json:"product_type"`
	FlowStatus      string             `json:"flow_status"`
	PercentComplete decimal.Decimal    `json:"percent_complete"`
	TotalStages     int                `json:"total_stages"`
	CompletedStages int                `json:"completed_stages"`
	Stages          []StageInstanceDTO `json:"stages"`
}

// CompleteStageRequest body para POST /stages/{n}/complete.
type CompleteStageRequest struct {
	ActualQuantity    decimal.Decimal  `json:"actual_quantity"`
	DefectQuantity    decimal.Decimal  `json:"defect_quantity"`
	QualityGrade      string           `json:"quality_grade"`
	QualityNotes      string           `json:"quality_notes,omitempty"`
	Images            []string         `json:"images,omitempty"`
	ByproductQuantity *decimal.Decimal `json:"byproduct_quantity,omitempty"`
}

// HoldStageRequest body para POST /stages/{n}/hold.
type HoldStageRequest struct {
	Reason string `json:"reason"`
}
