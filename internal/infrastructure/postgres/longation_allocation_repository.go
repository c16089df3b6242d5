package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.LongationAllocationRepository = (*LongationAllocationRepo)(nil)

// LongationAllocationRepo asignaciones del ledger de longation sobre
// PostgreSQL (usable con pool o tx).
type LongationAllocationRepo struct {
	q Querier
}

// NewLongationAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLongationAllocationRepository(q Querier) *LongationAllocationRepo {
	return &LongationAllocationRepo{q: q}
}

const allocationColumns = `id, entry_id, company_id, consumer_order_id, quantity, status, created_at, updated_at`

func scanAllocation(row pgx.Row) (*entity.LongationAllocation, error) {
	var a entity.LongationAllocation
	err := row.Scan(
		&a.ID, &a.EntryID, &a.CompanyID, &a.ConsumerOrderID,
		&a.Quantity, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create persiste una asignación nueva (status = allocated).
func (r *LongationAllocationRepo) Create(ctx context.Context, alloc *entity.LongationAllocation) error {
	query := `
		INSERT INTO longation_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		alloc.ID, alloc.EntryID, alloc.CompanyID, alloc.ConsumerOrderID,
		alloc.Quantity, alloc.Status, alloc.CreatedAt, alloc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación por ID. Devuelve nil, nil si no existe.
func (r *LongationAllocationRepo) GetByID(ctx context.Context, id string) (*entity.LongationAllocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM longation_allocations WHERE id = $1`
	a, err := scanAllocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return a, nil
}

// GetForUpdate obtiene la asignación y bloquea su fila para la transición de estado.
func (r *LongationAllocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.LongationAllocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM longation_allocations WHERE id = $1 FOR UPDATE`
	a, err := scanAllocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get allocation for update: %w", err)
	}
	return a, nil
}

// UpdateStatus cambia el estado de la asignación (allocated → used/cancelled).
func (r *LongationAllocationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE longation_allocations SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update allocation status: %w", err)
	}
	return nil
}

// ListByEntry devuelve las asignaciones de un entry, más recientes primero.
func (r *LongationAllocationRepo) ListByEntry(ctx context.Context, entryID string) ([]*entity.LongationAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM longation_allocations
		WHERE entry_id = $1
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var allocs []*entity.LongationAllocation
	for rows.Next() {
		var a entity.LongationAllocation
		if err := rows.Scan(
			&a.ID, &a.EntryID, &a.CompanyID, &a.ConsumerOrderID,
			&a.Quantity, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("list allocations scan: %w", err)
		}
		allocs = append(allocs, &a)
	}
	return allocs, rows.Err()
}
