package entity

// StageDefinition es un paso de la plantilla de etapas de un tipo de producto.
type StageDefinition struct {
	StageNumber          int
	StageType            string // ej. "bleaching", "curing", "washing", "felting"
	QualityCheckRequired bool
}

// StageTemplate define la secuencia ordenada de etapas de un tipo de producto.
// Es data de referencia de solo lectura: al inicializar una orden se toma una
// copia congelada, por lo que editar la plantilla no altera órdenes en curso.
type StageTemplate struct {
	CompanyID   string
	ProductType string
	Stages      []StageDefinition // ordenadas por StageNumber
}
