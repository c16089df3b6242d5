package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/produccion-api/internal/application/flow"
	"github.com/jhoicas/produccion-api/internal/application/stock"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ flow.TxRunner = (*TxRunner)(nil)
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del motor de etapas atados a la tx
// y hace Commit o Rollback. Usado por initialize y por las operaciones de etapa.
func (r *TxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.ProductionOrderRepository,
	stageRepo repository.StageInstanceRepository,
	entryRepo repository.LongationEntryRepository,
	seqRepo repository.DocumentSequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderRepo := NewProductionOrderRepository(tx)
	stageRepo := NewStageInstanceRepository(tx)
	entryRepo := NewLongationEntryRepository(tx)
	seqRepo := NewDocumentSequenceRepository(tx)

	if err := fn(orderRepo, stageRepo, entryRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunStock inicia una transacción con los repos del ledger de longation
// (asignar / usar / cancelar).
func (r *TxRunner) RunStock(ctx context.Context, fn func(
	entryRepo repository.LongationEntryRepository,
	allocRepo repository.LongationAllocationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entryRepo := NewLongationEntryRepository(tx)
	allocRepo := NewLongationAllocationRepository(tx)

	if err := fn(entryRepo, allocRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
