package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var (
	_ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)
	_ repository.ProductionBatchRepository = (*ProductionBatchRepo)(nil)
)

// ProductionOrderRepo órdenes de producción sobre PostgreSQL.
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

const orderColumns = `id, order_number, recipe_id, planned_qty, unit, planned_date, deadline, status, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.RecipeID, &o.PlannedQty, &o.Unit, &o.PlannedDate,
		&o.Deadline, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ProductionOrderRepo) Create(ctx context.Context, o *entity.ProductionOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO production_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.OrderNumber, o.RecipeID, o.PlannedQty, o.Unit, o.PlannedDate, o.Deadline, o.Status,
		o.Notes, o.CreatedAt, o.UpdatedAt)
	return wrapWrite("create order", err)
}

func (r *ProductionOrderRepo) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM production_orders WHERE id = $1`, id)
}

func (r *ProductionOrderRepo) GetByNumber(ctx context.Context, number string) (*entity.ProductionOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM production_orders WHERE order_number = $1`, number)
}

func (r *ProductionOrderRepo) getOne(ctx context.Context, query, arg string) (*entity.ProductionOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *ProductionOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE production_orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrapWrite("update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order", id)
	}
	return nil
}

func (r *ProductionOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.ProductionOrder, error) {
	p := f.Page.Normalize()
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM production_orders
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR recipe_id::text = $2)
		ORDER BY created_at DESC, order_number
		LIMIT $3 OFFSET $4`, f.Status, f.RecipeID, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.ProductionOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ProductionBatchRepo lotes de producción con consumos y parámetros.
type ProductionBatchRepo struct {
	q Querier
}

// NewProductionBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionBatchRepository(q Querier) *ProductionBatchRepo {
	return &ProductionBatchRepo{q: q}
}

const batchColumns = `id, batch_number, order_id, recipe_id, produced_qty, unit, production_date,
	produced_by, status, notes, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.ProductionBatch, error) {
	var (
		b       entity.ProductionBatch
		orderID *string
	)
	if err := row.Scan(&b.ID, &b.BatchNumber, &orderID, &b.RecipeID, &b.ProducedQty, &b.Unit,
		&b.ProductionDate, &b.ProducedBy, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.OrderID = deref(orderID)
	return &b, nil
}

func (r *ProductionBatchRepo) Create(ctx context.Context, b *entity.ProductionBatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO production_batches (`+batchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.BatchNumber, nullable(b.OrderID), b.RecipeID, b.ProducedQty, b.Unit, b.ProductionDate,
		b.ProducedBy, b.Status, b.Notes, b.CreatedAt, b.UpdatedAt)
	return wrapWrite("create batch", err)
}

func (r *ProductionBatchRepo) GetByID(ctx context.Context, id string) (*entity.ProductionBatch, error) {
	return r.getOne(ctx, `SELECT `+batchColumns+` FROM production_batches WHERE id = $1`, id)
}

func (r *ProductionBatchRepo) GetByNumber(ctx context.Context, number string) (*entity.ProductionBatch, error) {
	return r.getOne(ctx, `SELECT `+batchColumns+` FROM production_batches WHERE batch_number = $1`, number)
}

func (r *ProductionBatchRepo) getOne(ctx context.Context, query, arg string) (*entity.ProductionBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	if err := r.hydrate(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *ProductionBatchRepo) hydrate(ctx context.Context, b *entity.ProductionBatch) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, material_id, quantity, unit FROM batch_material_usage
		WHERE batch_id = $1 ORDER BY seq`, b.ID)
	if err != nil {
		return fmt.Errorf("list usage: %w", err)
	}
	for rows.Next() {
		u := entity.MaterialUsage{BatchID: b.ID}
		if err := rows.Scan(&u.ID, &u.MaterialID, &u.Quantity, &u.Unit); err != nil {
			rows.Close()
			return fmt.Errorf("scan usage: %w", err)
		}
		b.MaterialUsage = append(b.MaterialUsage, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, name, value, unit, is_in_range FROM batch_parameters
		WHERE batch_id = $1 ORDER BY seq`, b.ID)
	if err != nil {
		return fmt.Errorf("list batch parameters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p := entity.BatchParameter{BatchID: b.ID}
		if err := rows.Scan(&p.ID, &p.Name, &p.Value, &p.Unit, &p.IsInRange); err != nil {
			return fmt.Errorf("scan batch parameter: %w", err)
		}
		b.Parameters = append(b.Parameters, p)
	}
	return rows.Err()
}

func (r *ProductionBatchRepo) AddUsage(ctx context.Context, u *entity.MaterialUsage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batch_material_usage (id, batch_id, material_id, quantity, unit)
		VALUES ($1, $2, $3, $4, $5)`, u.ID, u.BatchID, u.MaterialID, u.Quantity, u.Unit)
	return wrapWrite("add usage", err)
}

func (r *ProductionBatchRepo) AddParameter(ctx context.Context, p *entity.BatchParameter) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batch_parameters (id, batch_id, name, value, unit, is_in_range)
		VALUES ($1, $2, $3, $4, $5, $6)`, p.ID, p.BatchID, p.Name, p.Value, p.Unit, p.IsInRange)
	return wrapWrite("add batch parameter", err)
}

func (r *ProductionBatchRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE production_batches SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrapWrite("update batch status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("batch", id)
	}
	return nil
}

// List devuelve cabeceras con consumos y parámetros, más recientes primero.
func (r *ProductionBatchRepo) List(ctx context.Context, f repository.BatchFilter) ([]*entity.ProductionBatch, error) {
	p := f.Page.Normalize()
	rows, err := r.q.Query(ctx, `
		SELECT `+batchColumns+` FROM production_batches
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR order_id::text = $2)
		  AND ($3 = '' OR recipe_id::text = $3)
		ORDER BY created_at DESC, batch_number
		LIMIT $4 OFFSET $5`, f.Status, f.OrderID, f.RecipeID, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	var list []*entity.ProductionBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range list {
		if err := r.hydrate(ctx, b); err != nil {
			return nil, err
		}
	}
	return list, nil
}
