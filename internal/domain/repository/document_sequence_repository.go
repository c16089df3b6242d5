package repository

import "context"

// DocumentSequenceRepository genera consecutivos de documento por empresa de
// forma atómica (reemplaza los contadores globales implícitos del sistema
// anterior por un generador inyectado).
type DocumentSequenceRepository interface {
	// Next devuelve el siguiente número para (companyID, code, year).
	// Dos llamadas concurrentes nunca devuelven el mismo valor.
	Next(ctx context.Context, companyID, code string, year int) (int64, error)
}
