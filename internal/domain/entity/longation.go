package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una asignación de stock de longation.
const (
	AllocationStatusAllocated = "allocated"
	AllocationStatusUsed      = "used" // terminal: material consumido físicamente
	AllocationStatusCancelled = "cancelled"
)

// LongationEntry es un registro append-only de material recuperado/merma
// producido al completar una etapa. Nunca se borra ni se sobreescribe; solo
// AvailableQuantity baja con las asignaciones y sube con las cancelaciones.
//
// Ley de conservación (se cumple tras cada operación):
//
//	Quantity == AvailableQuantity + Σ(asignaciones allocated/used)
type LongationEntry struct {
	ID                string
	CompanyID         string
	EntryNumber       string // consecutivo por empresa, ej. LNG-2026-0001
	SourceOrderID     string
	SourceStageNumber int
	SourceModule      string // stageType de la etapa que lo produjo
	Quantity          decimal.Decimal
	AvailableQuantity decimal.Decimal
	Unit              string
	CreatedAt         time.Time
}

// LongationAllocation reserva una cantidad de un LongationEntry para una
// orden consumidora. allocated → used (terminal) o allocated → cancelled
// (devuelve la cantidad al entry).
type LongationAllocation struct {
	ID              string
	EntryID         string
	CompanyID       string
	ConsumerOrderID string
	Quantity        decimal.Decimal
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
