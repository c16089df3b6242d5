package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LongationEntryDTO un registro del stock de longation en respuestas de listado.
type LongationEntryDTO struct {
	ID                string          `json:"id"`
	EntryNumber       string          `json:"entry_number"`
	SourceOrderID     string          `json:"source_order_id"`
	SourceStageNumber int             `json:"source_stage_number"`
	SourceModule      string          `json:"source_module"`
	Quantity          decimal.Decimal `json:"quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Unit              string          `json:"unit"`
	CreatedAt         time.Time       `json:"created_at"`
}

// AllocationDTO una asignación de stock de longation.
type AllocationDTO struct {
	ID              string          `json:"id"`
	EntryID         string          `json:"entry_id"`
	ConsumerOrderID string          `json:"consumer_order_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AllocateRequest body para POST /longation/{entry_id}/allocate.
type AllocateRequest struct {
	ConsumerOrderID string          `json:"consumer_order_id"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// ListLongationRequest filtros del listado de stock de longation.
type ListLongationRequest struct {
	PageRequest
	SourceModule  string `query:"source_module"`
	OnlyAvailable bool   `query:"only_available"`
}
