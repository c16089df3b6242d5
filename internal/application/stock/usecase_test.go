package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/application/stock"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-000000000001"
	testEntryID   = "00000000-0000-0000-0000-000000000020"
	testConsumer  = "00000000-0000-0000-0000-000000000030"
)

// buildStock arma el store con un entry de 10 kg disponibles.
func buildStock(t *testing.T) (*testutil.MemStore, *stock.LongationStockUseCase) {
	t.Helper()
	store := testutil.NewMemStore()
	store.PutEntry(&entity.LongationEntry{
		ID:                testEntryID,
		CompanyID:         testCompanyID,
		EntryNumber:       "LNG-2026-0001",
		SourceOrderID:     "orden-origen",
		SourceStageNumber: 2,
		SourceModule:      "washing",
		Quantity:          decimal.NewFromInt(10),
		AvailableQuantity: decimal.NewFromInt(10),
		Unit:              "kg",
	})
	return store, stock.NewLongationStockUseCase(store, store.EntryLedger())
}

// entryByID busca un entry en el snapshot del ledger.
func entryByID(t *testing.T, store *testutil.MemStore, id string) *entity.LongationEntry {
	t.Helper()
	for _, e := range store.Entries() {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entry %s no encontrado", id)
	return nil
}

// checkConservation verifica la ley de conservación del ledger:
// quantity == availableQuantity + Σ(asignaciones allocated y used).
func checkConservation(t *testing.T, store *testutil.MemStore, entryID string) {
	t.Helper()
	entry := entryByID(t, store, entryID)
	held := decimal.Zero
	for _, a := range store.Allocations() {
		if a.EntryID != entryID {
			continue
		}
		if a.Status == entity.AllocationStatusAllocated || a.Status == entity.AllocationStatusUsed {
			held = held.Add(a.Quantity)
		}
	}
	total := entry.AvailableQuantity.Add(held)
	assert.True(t, entry.Quantity.Equal(total),
		"conservación violada: quantity=%s available=%s comprometido=%s",
		entry.Quantity, entry.AvailableQuantity, held)
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_DescuentaDisponibilidad(t *testing.T) {
	store, uc := buildStock(t)

	alloc, err := uc.Allocate(context.Background(), testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(4))
	require.NoError(t, err)

	assert.Equal(t, entity.AllocationStatusAllocated, alloc.Status)
	assert.True(t, alloc.Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, testConsumer, alloc.ConsumerOrderID)

	entry := entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(6)))
	// Quantity original nunca cambia: el ledger es append-only
	assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(10)))
	checkConservation(t, store, testEntryID)
}

func TestAllocate_RechazaSobreAsignacion(t *testing.T) {
	store, uc := buildStock(t)
	ctx := context.Background()

	_, err := uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(7))
	require.NoError(t, err)

	_, err = uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(7))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El intento fallido no tocó la disponibilidad
	entry := entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(3)))
	checkConservation(t, store, testEntryID)
}

func TestAllocate_ExactamenteLoDisponible(t *testing.T) {
	store, uc := buildStock(t)

	_, err := uc.Allocate(context.Background(), testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(10))
	require.NoError(t, err)

	entry := entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.IsZero())
	checkConservation(t, store, testEntryID)
}

func TestAllocate_Validaciones(t *testing.T) {
	_, uc := buildStock(t)
	ctx := context.Background()

	_, err := uc.Allocate(ctx, testCompanyID, "", testConsumer, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Allocate(ctx, testCompanyID, testEntryID, "", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(-3))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Allocate(ctx, testCompanyID, "no-existe", testConsumer, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Allocate(ctx, "otra-empresa", testEntryID, testConsumer, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Dos solicitudes concurrentes por 7 de 10 disponibles: exactamente una gana.
// El compare-and-decrement nunca deja la disponibilidad negativa.
func TestAllocate_CarreraUnSoloGanador(t *testing.T) {
	store, uc := buildStock(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(7))
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok, "exactamente una asignación debe ganar")
	assert.Equal(t, 1, insufficient)

	entry := entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(3)))
	assert.False(t, entry.AvailableQuantity.IsNegative())
	checkConservation(t, store, testEntryID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Use / Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestUse_EsTerminal(t *testing.T) {
	store, uc := buildStock(t)
	ctx := context.Background()

	alloc, err := uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(4))
	require.NoError(t, err)

	used, err := uc.Use(ctx, testCompanyID, alloc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AllocationStatusUsed, used.Status)

	// used no devuelve nada al entry
	entry := entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(6)))
	checkConservation(t, store, testEntryID)

	// Transiciones desde used se rechazan
	_, err = uc.Use(ctx, testCompanyID, alloc.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = uc.Cancel(ctx, testCompanyID, alloc.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_RestauraDisponibilidadExacta(t *testing.T) {
	store, uc := buildStock(t)
	ctx := context.Background()

	alloc, err := uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(4))
	require.NoError(t, err)

	cancelled, err := uc.Cancel(ctx, testCompanyID, alloc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AllocationStatusCancelled, cancelled.Status)

	// Round trip: la disponibilidad vuelve exactamente al valor inicial
	entry := entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(10)))
	checkConservation(t, store, testEntryID)

	// Cancelar dos veces no duplica la devolución
	_, err = uc.Cancel(ctx, testCompanyID, alloc.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	entry = entryByID(t, store, testEntryID)
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(10)))
}

func TestTransiciones_ErroresDeAcceso(t *testing.T) {
	_, uc := buildStock(t)
	ctx := context.Background()

	_, err := uc.Use(ctx, testCompanyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Use(ctx, testCompanyID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	alloc, err := uc.Allocate(ctx, testCompanyID, testEntryID, testConsumer, decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = uc.Cancel(ctx, "otra-empresa", alloc.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorModuloYDisponibilidad(t *testing.T) {
	store, uc := buildStock(t)
	ctx := context.Background()
	store.PutEntry(&entity.LongationEntry{
		ID:                "entry-felting",
		CompanyID:         testCompanyID,
		EntryNumber:       "LNG-2026-0002",
		SourceOrderID:     "otra-orden",
		SourceStageNumber: 3,
		SourceModule:      "felting",
		Quantity:          decimal.NewFromInt(5),
		AvailableQuantity: decimal.Zero,
		Unit:              "kg",
	})
	store.PutEntry(&entity.LongationEntry{
		ID:           "entry-ajena",
		CompanyID:    "otra-empresa",
		SourceModule: "washing",
		Quantity:     decimal.NewFromInt(2),
	})

	// Sin filtros: solo los entries de la empresa
	all, err := uc.List(ctx, testCompanyID, dto.ListLongationRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Por módulo origen
	washing, err := uc.List(ctx, testCompanyID, dto.ListLongationRequest{SourceModule: "washing"})
	require.NoError(t, err)
	require.Len(t, washing, 1)
	assert.Equal(t, testEntryID, washing[0].ID)

	// Solo con disponibilidad
	available, err := uc.List(ctx, testCompanyID, dto.ListLongationRequest{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, testEntryID, available[0].ID)
}
