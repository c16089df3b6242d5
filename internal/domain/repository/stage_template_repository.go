package repository

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// StageTemplateRepository resuelve la secuencia de etapas configurada para un
// tipo de producto. Lookup puro sobre data de referencia, sin efectos.
type StageTemplateRepository interface {
	// Resolve devuelve la plantilla con las etapas ordenadas, o
	// domain.ErrTemplateNotFound si el tipo de producto no tiene secuencia.
	Resolve(ctx context.Context, companyID, productType string) (*entity.StageTemplate, error)
}
