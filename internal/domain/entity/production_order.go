package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de aprobación de una orden de producción.
// El workflow de aprobación es externo a este módulo; aquí solo se verifica
// que la orden llegue aprobada antes de inicializar el flujo.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// Estados de flujo a nivel de orden. Siempre derivados de los estados de
// las etapas (ver flow.ComputeFlowStatus); nunca se asignan a mano.
const (
	FlowStatusNotStarted = "not_started"
	FlowStatusInProgress = "in_progress"
	FlowStatusOnHold     = "on_hold"
	FlowStatusCompleted  = "completed"
)

// ProductionOrder representa la cabecera de una orden de producción y su
// progreso por la línea. Las etapas (StageInstance) se materializan al
// inicializar el flujo y su secuencia queda congelada desde ese momento.
type ProductionOrder struct {
	ID                string
	CompanyID         string
	OrderNumber       string
	ProductType       string
	Quantity          decimal.Decimal
	Unit              string
	Priority          string
	ApprovalStatus    string
	FlowStatus        string
	FlowInitializedAt *time.Time // nil = flujo sin inicializar
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FlowInitialized indica si el flujo ya fue inicializado (guard de idempotencia).
func (o *ProductionOrder) FlowInitialized() bool {
	return o.FlowInitializedAt != nil
}
