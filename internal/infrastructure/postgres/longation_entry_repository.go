package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.LongationEntryRepository = (*LongationEntryRepo)(nil)

// LongationEntryRepo ledger append-only del stock de longation sobre
// PostgreSQL (usable con pool o tx).
type LongationEntryRepo struct {
	q Querier
}

// NewLongationEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLongationEntryRepository(q Querier) *LongationEntryRepo {
	return &LongationEntryRepo{q: q}
}

// Create agrega un entry al ledger (solo lo llama completeStage).
func (r *LongationEntryRepo) Create(ctx context.Context, entry *entity.LongationEntry) error {
	query := `
		INSERT INTO longation_stock (
			id, company_id, entry_number, source_order_id, source_stage_number,
			source_module, quantity, available_quantity, unit, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.CompanyID, entry.EntryNumber, entry.SourceOrderID, entry.SourceStageNumber,
		entry.SourceModule, entry.Quantity, entry.AvailableQuantity, entry.Unit, entry.CreatedAt,
	)
	if err != nil {
		// Constraint único (source_order_id, source_stage_number): un solo
		// entry por etapa completada.
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create longation entry: %w", err)
	}
	return nil
}

// GetByID obtiene un entry por ID. Devuelve nil, nil si no existe.
func (r *LongationEntryRepo) GetByID(ctx context.Context, id string) (*entity.LongationEntry, error) {
	query := `
		SELECT id, company_id, entry_number, source_order_id, source_stage_number,
		       source_module, quantity, available_quantity, unit, created_at
		FROM longation_stock WHERE id = $1`
	var e entity.LongationEntry
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.CompanyID, &e.EntryNumber, &e.SourceOrderID, &e.SourceStageNumber,
		&e.SourceModule, &e.Quantity, &e.AvailableQuantity, &e.Unit, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get longation entry: %w", err)
	}
	return &e, nil
}

// List consulta el ledger con filtros (módulo origen, solo disponibles, rango, paginado).
func (r *LongationEntryRepo) List(ctx context.Context, companyID string, filter repository.LongationFilter) ([]*entity.LongationEntry, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, company_id, entry_number, source_order_id, source_stage_number,
		       source_module, quantity, available_quantity, unit, created_at
		FROM longation_stock
		WHERE company_id = $1`)
	args := []any{companyID}

	if filter.SourceModule != "" {
		args = append(args, filter.SourceModule)
		fmt.Fprintf(&sb, " AND source_module = $%d", len(args))
	}
	if filter.OnlyAvailable {
		sb.WriteString(" AND available_quantity > 0")
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	args = append(args, filter.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list longation entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.LongationEntry
	for rows.Next() {
		var e entity.LongationEntry
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.EntryNumber, &e.SourceOrderID, &e.SourceStageNumber,
			&e.SourceModule, &e.Quantity, &e.AvailableQuantity, &e.Unit, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list longation entries scan: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// TryReserve descuenta quantity de available_quantity con un UPDATE
// condicional: la condición available_quantity >= quantity viaja en el mismo
// statement, así dos asignaciones concurrentes nunca sobre-suscriben el
// entry. Devuelve false si no alcanzó el stock (el caller traduce a conflicto
// reintentable).
func (r *LongationEntryRepo) TryReserve(ctx context.Context, entryID string, quantity decimal.Decimal) (bool, error) {
	query := `
		UPDATE longation_stock
		SET available_quantity = available_quantity - $2
		WHERE id = $1 AND available_quantity >= $2`
	tag, err := r.q.Exec(ctx, query, entryID, quantity)
	if err != nil {
		return false, fmt.Errorf("reserve longation stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Restore devuelve quantity a available_quantity (cancelación de asignación).
func (r *LongationEntryRepo) Restore(ctx context.Context, entryID string, quantity decimal.Decimal) error {
	query := `
		UPDATE longation_stock
		SET available_quantity = available_quantity + $2
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, entryID, quantity)
	if err != nil {
		return fmt.Errorf("restore longation stock: %w", err)
	}
	return nil
}
