// Package testutil provee un doble en memoria de los puertos de persistencia
// para los tests de los casos de uso. Las "transacciones" operan sobre el
// mismo store protegido por mutex: suficiente para ejercitar la lógica de
// aplicación sin base de datos, incluyendo el compare-and-decrement del ledger.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// MemStore implementa los TxRunner de flow y stock y entrega vistas de
// repositorio sobre el mismo estado compartido.
type MemStore struct {
	mu        sync.Mutex
	orders    map[string]*entity.ProductionOrder
	stages    map[string][]*entity.StageInstance
	templates map[string]*entity.StageTemplate
	entries   []*entity.LongationEntry
	allocs    []*entity.LongationAllocation
	seqs      map[string]int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		orders:    make(map[string]*entity.ProductionOrder),
		stages:    make(map[string][]*entity.StageInstance),
		templates: make(map[string]*entity.StageTemplate),
		seqs:      make(map[string]int64),
	}
}

// Run satisface flow.TxRunner. No hay rollback real: los casos de uso validan
// antes de mutar, que es lo que estos tests ejercitan.
func (s *MemStore) Run(ctx context.Context, fn func(
	orderRepo repository.ProductionOrderRepository,
	stageRepo repository.StageInstanceRepository,
	entryRepo repository.LongationEntryRepository,
	seqRepo repository.DocumentSequenceRepository,
) error) error {
	return fn(&memOrderRepo{s}, &memStageRepo{s}, &memEntryRepo{s}, &memSeqRepo{s})
}

// RunStock satisface stock.TxRunner.
func (s *MemStore) RunStock(ctx context.Context, fn func(
	entryRepo repository.LongationEntryRepository,
	allocRepo repository.LongationAllocationRepository,
) error) error {
	return fn(&memEntryRepo{s}, &memAllocRepo{s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Vistas de repositorio (para los constructores de casos de uso)
// ──────────────────────────────────────────────────────────────────────────────

func (s *MemStore) Orders() repository.ProductionOrderRepository       { return &memOrderRepo{s} }
func (s *MemStore) Stages() repository.StageInstanceRepository         { return &memStageRepo{s} }
func (s *MemStore) Templates() repository.StageTemplateRepository      { return &memTemplateRepo{s} }
func (s *MemStore) EntryLedger() repository.LongationEntryRepository   { return &memEntryRepo{s} }
func (s *MemStore) AllocationRepo() repository.LongationAllocationRepository { return &memAllocRepo{s} }

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de seeding e inspección
// ──────────────────────────────────────────────────────────────────────────────

func (s *MemStore) PutOrder(o *entity.ProductionOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func (s *MemStore) PutTemplate(t *entity.StageTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.CompanyID+"|"+t.ProductType] = t
}

func (s *MemStore) PutEntry(e *entity.LongationEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// Entries devuelve un snapshot del ledger en orden de inserción.
func (s *MemStore) Entries() []*entity.LongationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.LongationEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Allocations devuelve un snapshot de las asignaciones en orden de inserción.
func (s *MemStore) Allocations() []*entity.LongationAllocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.LongationAllocation, len(s.allocs))
	copy(out, s.allocs)
	return out
}

// StagesOf devuelve las etapas almacenadas de una orden (los punteros reales,
// para que los tests puedan forzar estados intermedios).
func (s *MemStore) StagesOf(orderID string) []*entity.StageInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.stages[orderID]
	sort.Slice(list, func(i, j int) bool { return list[i].StageNumber < list[j].StageNumber })
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes
// ──────────────────────────────────────────────────────────────────────────────

type memOrderRepo struct{ s *MemStore }

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) UpdateFlow(ctx context.Context, orderID, flowStatus string, initializedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.FlowStatus = flowStatus
	if initializedAt != nil {
		o.FlowInitializedAt = initializedAt
	}
	o.UpdatedAt = time.Now()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Etapas
// ──────────────────────────────────────────────────────────────────────────────

type memStageRepo struct{ s *MemStore }

func (r *memStageRepo) CreateAll(ctx context.Context, stages []*entity.StageInstance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range stages {
		cp := *st
		r.s.stages[st.OrderID] = append(r.s.stages[st.OrderID], &cp)
	}
	return nil
}

func (r *memStageRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StageInstance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.stages[orderID]
	out := make([]*entity.StageInstance, 0, len(stored))
	for _, st := range stored {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StageNumber < out[j].StageNumber })
	return out, nil
}

func (r *memStageRepo) Update(ctx context.Context, stage *entity.StageInstance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, st := range r.s.stages[stage.OrderID] {
		if st.ID == stage.ID {
			cp := *stage
			r.s.stages[stage.OrderID][i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

// ──────────────────────────────────────────────────────────────────────────────
// Plantillas
// ──────────────────────────────────────────────────────────────────────────────

type memTemplateRepo struct{ s *MemStore }

func (r *memTemplateRepo) Resolve(ctx context.Context, companyID, productType string) (*entity.StageTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.templates[companyID+"|"+productType]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger de longation
// ──────────────────────────────────────────────────────────────────────────────

type memEntryRepo struct{ s *MemStore }

func (r *memEntryRepo) Create(ctx context.Context, entry *entity.LongationEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.SourceOrderID == entry.SourceOrderID && e.SourceStageNumber == entry.SourceStageNumber {
			return domain.ErrConflict
		}
	}
	cp := *entry
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r *memEntryRepo) GetByID(ctx context.Context, id string) (*entity.LongationEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memEntryRepo) List(ctx context.Context, companyID string, filter repository.LongationFilter) ([]*entity.LongationEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.LongationEntry
	for _, e := range r.s.entries {
		if e.CompanyID != companyID {
			continue
		}
		if filter.SourceModule != "" && e.SourceModule != filter.SourceModule {
			continue
		}
		if filter.OnlyAvailable && !e.AvailableQuantity.IsPositive() {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memEntryRepo) TryReserve(ctx context.Context, entryID string, quantity decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.ID != entryID {
			continue
		}
		if e.AvailableQuantity.Cmp(quantity) < 0 {
			return false, nil
		}
		e.AvailableQuantity = e.AvailableQuantity.Sub(quantity)
		return true, nil
	}
	return false, nil
}

func (r *memEntryRepo) Restore(ctx context.Context, entryID string, quantity decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.ID == entryID {
			e.AvailableQuantity = e.AvailableQuantity.Add(quantity)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ──────────────────────────────────────────────────────────────────────────────
// Asignaciones
// ──────────────────────────────────────────────────────────────────────────────

type memAllocRepo struct{ s *MemStore }

func (r *memAllocRepo) Create(ctx context.Context, alloc *entity.LongationAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *alloc
	r.s.allocs = append(r.s.allocs, &cp)
	return nil
}

func (r *memAllocRepo) GetByID(ctx context.Context, id string) (*entity.LongationAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.allocs {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAllocRepo) GetForUpdate(ctx context.Context, id string) (*entity.LongationAllocation, error) {
	return r.GetByID(ctx, id)
}

func (r *memAllocRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.allocs {
		if a.ID == id {
			a.Status = status
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memAllocRepo) ListByEntry(ctx context.Context, entryID string) ([]*entity.LongationAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.LongationAllocation
	for _, a := range r.s.allocs {
		if a.EntryID == entryID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Consecutivos de documento
// ──────────────────────────────────────────────────────────────────────────────

type memSeqRepo struct{ s *MemStore }

func (r *memSeqRepo) Next(ctx context.Context, companyID, code string, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := companyID + "|" + code + "|" + strconv.Itoa(year)
	r.s.seqs[key]++
	return r.s.seqs[key], nil
}
