package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.StageTemplateRepository = (*StageTemplateRepo)(nil)

// StageTemplateRepo lookup de plantillas de etapas por tipo de producto.
// Data de referencia de solo lectura.
type StageTemplateRepo struct {
	q Querier
}

// NewStageTemplateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStageTemplateRepository(q Querier) *StageTemplateRepo {
	return &StageTemplateRepo{q: q}
}

// Resolve devuelve la secuencia ordenada de etapas configurada para el tipo
// de producto, o domain.ErrTemplateNotFound si no hay ninguna.
func (r *StageTemplateRepo) Resolve(ctx context.Context, companyID, productType string) (*entity.StageTemplate, error) {
	query := `
		SELECT stage_number, stage_type, quality_check_required
		FROM stage_templates
		WHERE company_id = $1 AND product_type = $2
		ORDER BY stage_number ASC`
	rows, err := r.q.Query(ctx, query, companyID, productType)
	if err != nil {
		return nil, fmt.Errorf("resolve stage template: %w", err)
	}
	defer rows.Close()

	tpl := &entity.StageTemplate{CompanyID: companyID, ProductType: productType}
	for rows.Next() {
		var def entity.StageDefinition
		if err := rows.Scan(&def.StageNumber, &def.StageType, &def.QualityCheckRequired); err != nil {
			return nil, fmt.Errorf("resolve stage template scan: %w", err)
		}
		tpl.Stages = append(tpl.Stages, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tpl.Stages) == 0 {
		return nil, domain.ErrTemplateNotFound
	}
	return tpl, nil
}
