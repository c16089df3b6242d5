package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.DocumentSequenceRepository = (*DocumentSequenceRepo)(nil)

// DocumentSequenceRepo consecutivos de documento por empresa. El upsert con
// RETURNING es atómico: dos llamadas concurrentes nunca reciben el mismo número.
type DocumentSequenceRepo struct {
	q Querier
}

// NewDocumentSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentSequenceRepository(q Querier) *DocumentSequenceRepo {
	return &DocumentSequenceRepo{q: q}
}

// Next devuelve el siguiente número para (companyID, code, year).
func (r *DocumentSequenceRepo) Next(ctx context.Context, companyID, code string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (company_id, code, year, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, code, year)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var next int64
	if err := r.q.QueryRow(ctx, query, companyID, code, year).Scan(&next); err != nil {
		return 0, fmt.Errorf("next document sequence: %w", err)
	}
	return next, nil
}
