package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

// ServiceOrderRepo órdenes de servicio sobre PostgreSQL.
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

const serviceOrderColumns = `id, order_number, customer_ref, equipment_type, equipment_model, location,
	description, priority, status, planned_start, planned_end, actual_start, actual_end, notes,
	created_at, updated_at`

func scanServiceOrder(row pgx.Row) (*entity.ServiceOrder, error) {
	var o entity.ServiceOrder
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerRef, &o.EquipmentType, &o.EquipmentModel,
		&o.Location, &o.Description, &o.Priority, &o.Status, &o.PlannedStart, &o.PlannedEnd,
		&o.ActualStart, &o.ActualEnd, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_orders (`+serviceOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, o.OrderNumber, o.CustomerRef, o.EquipmentType, o.EquipmentModel, o.Location,
		o.Description, o.Priority, o.Status, o.PlannedStart, o.PlannedEnd, o.ActualStart, o.ActualEnd,
		o.Notes, o.CreatedAt, o.UpdatedAt)
	return wrapWrite("create service order", err)
}

func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la orden: un consumo y un cierre concurrentes se serializan.
func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *ServiceOrderRepo) GetByNumber(ctx context.Context, number string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders WHERE order_number = $1`, number)
}

func (r *ServiceOrderRepo) getOne(ctx context.Context, query, arg string) (*entity.ServiceOrder, error) {
	o, err := scanServiceOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	if err := r.hydrate(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *ServiceOrderRepo) hydrate(ctx context.Context, o *entity.ServiceOrder) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, engineer_id, notes, assigned_at
		FROM service_assignments WHERE order_id = $1 ORDER BY assigned_at, id`, o.ID)
	if err != nil {
		return fmt.Errorf("list assignments: %w", err)
	}
	for rows.Next() {
		a := entity.ServiceAssignment{OrderID: o.ID}
		if err := rows.Scan(&a.ID, &a.EngineerID, &a.Notes, &a.AssignedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan assignment: %w", err)
		}
		o.Assignments = append(o.Assignments, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, engineer_id, work_date, start_time, end_time, description, result, status, created_at
		FROM work_logs WHERE order_id = $1 ORDER BY seq`, o.ID)
	if err != nil {
		return fmt.Errorf("list work logs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		w := entity.WorkLog{OrderID: o.ID}
		if err := rows.Scan(&w.ID, &w.EngineerID, &w.WorkDate, &w.StartTime, &w.EndTime,
			&w.Description, &w.Result, &w.Status, &w.CreatedAt); err != nil {
			return fmt.Errorf("scan work log: %w", err)
		}
		o.WorkLogs = append(o.WorkLogs, w)
	}
	return rows.Err()
}

func (r *ServiceOrderRepo) Update(ctx context.Context, o *entity.ServiceOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE service_orders
		SET customer_ref = $2, equipment_type = $3, equipment_model = $4, location = $5,
		    description = $6, priority = $7, status = $8, planned_start = $9, planned_end = $10,
		    actual_start = $11, actual_end = $12, notes = $13, updated_at = $14
		WHERE id = $1`,
		o.ID, o.CustomerRef, o.EquipmentType, o.EquipmentModel, o.Location, o.Description,
		o.Priority, o.Status, o.PlannedStart, o.PlannedEnd, o.ActualStart, o.ActualEnd, o.Notes,
		o.UpdatedAt)
	if err != nil {
		return wrapWrite("update service order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("service order", o.ID)
	}
	return nil
}

// Delete falla con conflicto si algún movimiento apunta a la orden (23503).
func (r *ServiceOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM service_orders WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete service order: tiene movimientos: %w", domain.ErrConflict)
		}
		return wrapWrite("delete service order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("service order", id)
	}
	return nil
}

func (r *ServiceOrderRepo) List(ctx context.Context, f repository.ServiceOrderFilter) ([]*entity.ServiceOrder, error) {
	p := f.Page.Normalize()
	rows, err := r.q.Query(ctx, `
		SELECT `+serviceOrderColumns+` FROM service_orders
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR priority = $2)
		ORDER BY created_at DESC, order_number
		LIMIT $3 OFFSET $4`, f.Status, f.Priority, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list service orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.ServiceOrder
	for rows.Next() {
		o, err := scanServiceOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *ServiceOrderRepo) AddAssignment(ctx context.Context, a *entity.ServiceAssignment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_assignments (id, order_id, engineer_id, notes, assigned_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.OrderID, a.EngineerID, a.Notes, a.AssignedAt)
	return wrapWrite("add assignment", err)
}

func (r *ServiceOrderRepo) DeleteAssignment(ctx context.Context, orderID, assignmentID string) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM service_assignments WHERE id = $1 AND order_id = $2`, assignmentID, orderID)
	if err != nil {
		return wrapWrite("delete assignment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("assignment", assignmentID)
	}
	return nil
}

func (r *ServiceOrderRepo) AddWorkLog(ctx context.Context, w *entity.WorkLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO work_logs (id, order_id, engineer_id, work_date, start_time, end_time,
		                       description, result, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		w.ID, w.OrderID, w.EngineerID, w.WorkDate, w.StartTime, w.EndTime, w.Description,
		w.Result, w.Status, w.CreatedAt)
	return wrapWrite("add work log", err)
}
