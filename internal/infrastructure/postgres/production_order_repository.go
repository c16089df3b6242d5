package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo implementación sobre PostgreSQL (usable con pool o tx).
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

const orderColumns = `id, company_id, order_number, product_type, quantity, unit, priority,
	approval_status, flow_status, flow_initialized_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.ProductType, &o.Quantity, &o.Unit, &o.Priority,
		&o.ApprovalStatus, &o.FlowStatus, &o.FlowInitializedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// GetByID obtiene una orden por ID. Devuelve nil, nil si no existe.
func (r *ProductionOrderRepo) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get production order: %w", err)
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea su fila (SELECT FOR UPDATE).
// Serializa las operaciones de flujo sobre una misma orden.
func (r *ProductionOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get production order for update: %w", err)
	}
	return o, nil
}

// UpdateFlow persiste el estado de flujo derivado; initializedAt solo se
// escribe en la inicialización (nil = no tocar).
func (r *ProductionOrderRepo) UpdateFlow(ctx context.Context, orderID, flowStatus string, initializedAt *time.Time) error {
	query := `
		UPDATE production_orders
		SET flow_status = $2,
		    flow_initialized_at = COALESCE($3, flow_initialized_at),
		    updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, orderID, flowStatus, initializedAt)
	if err != nil {
		return fmt.Errorf("update order flow: %w", err)
	}
	return nil
}
