package flow_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	appflow "github.com/jhoicas/produccion-api/internal/application/flow"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-000000000001"
	testActorID   = "00000000-0000-0000-0000-000000000002"
	testOrderID   = "00000000-0000-0000-0000-000000000010"
)

// buildEngine arma el store en memoria con una orden aprobada de fieltro
// (plantilla bleaching → washing → felting) y los casos de uso conectados.
func buildEngine(t *testing.T) (*testutil.MemStore, *appflow.InitializeFlowUseCase, *appflow.StageExecutionUseCase) {
	t.Helper()
	store := testutil.NewMemStore()
	store.PutOrder(&entity.ProductionOrder{
		ID:             testOrderID,
		CompanyID:      testCompanyID,
		OrderNumber:    "OP-2026-0001",
		ProductType:    "felt_rug",
		Quantity:       decimal.NewFromInt(100),
		Unit:           "kg",
		ApprovalStatus: entity.ApprovalStatusApproved,
		FlowStatus:     entity.FlowStatusNotStarted,
	})
	store.PutTemplate(&entity.StageTemplate{
		CompanyID:   testCompanyID,
		ProductType: "felt_rug",
		Stages: []entity.StageDefinition{
			{StageNumber: 1, StageType: "bleaching", QualityCheckRequired: true},
			{StageNumber: 2, StageType: "washing", QualityCheckRequired: false},
			{StageNumber: 3, StageType: "felting", QualityCheckRequired: true},
		},
	})

	initUC := appflow.NewInitializeFlowUseCase(store, store.Templates())
	engineUC := appflow.NewStageExecutionUseCase(store, store.Orders(), store.Stages())
	return store, initUC, engineUC
}

func completeBody(byproduct int64) dto.CompleteStageRequest {
	req := dto.CompleteStageRequest{
		ActualQuantity: decimal.NewFromInt(100),
		DefectQuantity: decimal.NewFromInt(5),
		QualityGrade:   entity.QualityGradeA,
	}
	if byproduct > 0 {
		q := decimal.NewFromInt(byproduct)
		req.ByproductQuantity = &q
	}
	return req
}


// ──────────────────────────────────────────────────────────────────────────────
// Inicialización
// ──────────────────────────────────────────────────────────────────────────────

func TestInitialize_MaterializaEtapasPendientes(t *testing.T) {
	_, initUC, _ := buildEngine(t)

	snap, err := initUC.Initialize(context.Background(), testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)

	assert.Equal(t, entity.FlowStatusNotStarted, snap.FlowStatus)
	assert.Equal(t, 3, snap.TotalStages)
	require.Len(t, snap.Stages, 3)
	for i, s := range snap.Stages {
		assert.Equal(t, i+1, s.StageNumber, "las etapas deben venir ordenadas")
		assert.Equal(t, entity.StageStatusPending, s.Status)
	}
	assert.True(t, snap.PercentComplete.IsZero())
}

func TestInitialize_RechazaReinicializacion(t *testing.T) {
	_, initUC, _ := buildEngine(t)

	_, err := initUC.Initialize(context.Background(), testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)

	_, err = initUC.Initialize(context.Background(), testCompanyID, testActorID, testOrderID)
	assert.ErrorIs(t, err, domain.ErrFlowAlreadyInitialized)
}

func TestInitialize_RechazaOrdenNoAprobada(t *testing.T) {
	store, initUC, _ := buildEngine(t)
	store.PutOrder(&entity.ProductionOrder{
		ID:             "orden-borrador",
		CompanyID:      testCompanyID,
		ProductType:    "felt_rug",
		ApprovalStatus: entity.ApprovalStatusPending,
	})

	_, err := initUC.Initialize(context.Background(), testCompanyID, testActorID, "orden-borrador")
	assert.ErrorIs(t, err, domain.ErrOrderNotApproved)
}

func TestInitialize_OrdenInexistente(t *testing.T) {
	_, initUC, _ := buildEngine(t)

	_, err := initUC.Initialize(context.Background(), testCompanyID, testActorID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestInitialize_SinPlantilla(t *testing.T) {
	store, initUC, _ := buildEngine(t)
	store.PutOrder(&entity.ProductionOrder{
		ID:             "orden-sin-plantilla",
		CompanyID:      testCompanyID,
		ProductType:    "tipo-desconocido",
		ApprovalStatus: entity.ApprovalStatusApproved,
	})

	_, err := initUC.Initialize(context.Background(), testCompanyID, testActorID, "orden-sin-plantilla")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestInitialize_OtraEmpresa(t *testing.T) {
	_, initUC, _ := buildEngine(t)

	_, err := initUC.Initialize(context.Background(), "otra-empresa", testActorID, testOrderID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Secuenciación (escenario: bleaching → washing → felting)
// ──────────────────────────────────────────────────────────────────────────────

func TestStartStage_SecuenciaYLedger(t *testing.T) {
	store, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)

	// Etapa 1 arranca normal
	snap, err := engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStatusInProgress, snap.Stages[0].Status)
	assert.Equal(t, entity.FlowStatusInProgress, snap.FlowStatus)
	assert.Equal(t, testActorID, snap.Stages[0].StartedBy)

	// Etapa 2 no puede arrancar: la 1 no está completada
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 2)
	assert.ErrorIs(t, err, domain.ErrPreviousStageIncomplete)

	// Completar etapa 1 con byproduct=3 crea un entry en el ledger
	snap, err = engine.CompleteStage(ctx, testCompanyID, testActorID, testOrderID, 1, completeBody(3))
	require.NoError(t, err)
	assert.Equal(t, entity.StageStatusCompleted, snap.Stages[0].Status)
	assert.Equal(t, 1, snap.CompletedStages)

	entries := store.Entries()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, testOrderID, entry.SourceOrderID)
	assert.Equal(t, 1, entry.SourceStageNumber)
	assert.Equal(t, "bleaching", entry.SourceModule, "sourceModule debe ser el stageType")
	assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, entry.AvailableQuantity.Equal(decimal.NewFromInt(3)))
	assert.Contains(t, entry.EntryNumber, "LNG-")
}

func TestCompleteStage_SinByproductNoCreaEntry(t *testing.T) {
	store, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)

	_, err = engine.CompleteStage(ctx, testCompanyID, testActorID, testOrderID, 1, completeBody(0))
	require.NoError(t, err)
	assert.Empty(t, store.Entries())
}

func TestStartStage_SoloUnaActivaPorOrden(t *testing.T) {
	store, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)

	// Forzar etapa 2 a pending con la 1 completada y la 3 en progreso no es
	// representable vía API; simulamos el invariante marcando la etapa 1 como
	// completada a mano y la 3 activa para verificar el guard.
	stages := store.StagesOf(testOrderID)
	stages[0].Status = entity.StageStatusCompleted
	stages[2].Status = entity.StageStatusInProgress

	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 2)
	assert.ErrorIs(t, err, domain.ErrStageAlreadyActive)
}

func TestCompleteStage_ValidaGradoYCantidades(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)

	cases := []struct {
		name string
		in   dto.CompleteStageRequest
	}{
		{"grado fuera de la escala", dto.CompleteStageRequest{
			ActualQuantity: decimal.NewFromInt(10),
			QualityGrade:   "Z",
		}},
		{"grado vacío", dto.CompleteStageRequest{
			ActualQuantity: decimal.NewFromInt(10),
		}},
		{"cantidad negativa", dto.CompleteStageRequest{
			ActualQuantity: decimal.NewFromInt(-1),
			QualityGrade:   entity.QualityGradeA,
		}},
		{"defectos negativos", dto.CompleteStageRequest{
			ActualQuantity: decimal.NewFromInt(10),
			DefectQuantity: decimal.NewFromInt(-2),
			QualityGrade:   entity.QualityGradeA,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CompleteStage(ctx, testCompanyID, testActorID, testOrderID, 1, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	// Tras los rechazos la etapa sigue in_progress, sin mutación parcial
	snap, err := engine.GetFlowStatus(ctx, testCompanyID, testOrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStatusInProgress, snap.Stages[0].Status)
}

func TestCompleteStage_RechazaDesdeHold(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)
	_, err = engine.HoldStage(ctx, testCompanyID, testActorID, testOrderID, 1, "daño de máquina")
	require.NoError(t, err)

	// Completar requiere una sesión de trabajo activa: desde held se rechaza
	_, err = engine.CompleteStage(ctx, testCompanyID, testActorID, testOrderID, 1, completeBody(0))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Hold / Resume (escenario C)
// ──────────────────────────────────────────────────────────────────────────────

func TestHoldResume_PreservaEstadoYAcumulaDuracion(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	snap, err := engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)
	startedAt := snap.Stages[0].StartedAt
	require.NotNil(t, startedAt)

	snap, err = engine.HoldStage(ctx, testCompanyID, testActorID, testOrderID, 1, "daño de máquina")
	require.NoError(t, err)
	assert.Equal(t, entity.StageStatusHeld, snap.Stages[0].Status)
	assert.Equal(t, entity.FlowStatusOnHold, snap.FlowStatus)
	assert.Equal(t, "daño de máquina", snap.Stages[0].HoldReason)

	time.Sleep(10 * time.Millisecond)

	snap, err = engine.ResumeStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.StageStatusInProgress, snap.Stages[0].Status)
	assert.Equal(t, entity.FlowStatusInProgress, snap.FlowStatus)
	// startedAt intacto tras el ciclo hold/resume
	assert.Equal(t, startedAt, snap.Stages[0].StartedAt)

	// La etapa completa con normalidad después de reanudar
	snap, err = engine.CompleteStage(ctx, testCompanyID, testActorID, testOrderID, 1, completeBody(0))
	require.NoError(t, err)
	assert.Equal(t, entity.StageStatusCompleted, snap.Stages[0].Status)
}

func TestHoldStage_SoloDesdeInProgress(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)

	_, err = engine.HoldStage(ctx, testCompanyID, testActorID, testOrderID, 1, "motivo")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = engine.ResumeStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestHoldStage_RequiereMotivo(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)

	_, err = engine.HoldStage(ctx, testCompanyID, testActorID, testOrderID, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo (escenario D)
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujoCompleto_OrdenCompletadaEsTerminal(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)

	var snap *dto.FlowStatusDTO
	for n := 1; n <= 3; n++ {
		_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, n)
		require.NoError(t, err)
		snap, err = engine.CompleteStage(ctx, testCompanyID, testActorID, testOrderID, n, completeBody(0))
		require.NoError(t, err)
	}

	assert.Equal(t, entity.FlowStatusCompleted, snap.FlowStatus)
	assert.True(t, snap.PercentComplete.Equal(decimal.NewFromInt(100)),
		"percentComplete debe ser 100, fue %s", snap.PercentComplete)
	assert.Equal(t, 3, snap.CompletedStages)

	// Ninguna etapa puede arrancar de nuevo
	for n := 1; n <= 3; n++ {
		_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, n)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "etapa %d", n)
	}
}

func TestGetFlowStatus_LecturaIdempotente(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)
	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 1)
	require.NoError(t, err)

	first, err := engine.GetFlowStatus(ctx, testCompanyID, testOrderID)
	require.NoError(t, err)
	second, err := engine.GetFlowStatus(ctx, testCompanyID, testOrderID)
	require.NoError(t, err)

	assert.Equal(t, first.FlowStatus, second.FlowStatus)
	assert.True(t, first.PercentComplete.Equal(second.PercentComplete))
}

func TestStartStage_NumeroInexistente(t *testing.T) {
	_, initUC, engine := buildEngine(t)
	ctx := context.Background()

	_, err := initUC.Initialize(ctx, testCompanyID, testActorID, testOrderID)
	require.NoError(t, err)

	_, err = engine.StartStage(ctx, testCompanyID, testActorID, testOrderID, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
