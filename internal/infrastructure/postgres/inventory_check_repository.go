package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.InventoryCheckRepository = (*InventoryCheckRepo)(nil)

// InventoryCheckRepo conteos físicos sobre PostgreSQL.
type InventoryCheckRepo struct {
	q Querier
}

// NewInventoryCheckRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryCheckRepository(q Querier) *InventoryCheckRepo {
	return &InventoryCheckRepo{q: q}
}

const checkColumns = `id, check_number, check_date, status, notes, completed_at, created_at, updated_at`

func scanCheck(row pgx.Row) (*entity.InventoryCheck, error) {
	var c entity.InventoryCheck
	if err := row.Scan(&c.ID, &c.CheckNumber, &c.CheckDate, &c.Status, &c.Notes, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *InventoryCheckRepo) Create(ctx context.Context, c *entity.InventoryCheck) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_checks (`+checkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.CheckNumber, c.CheckDate, c.Status, c.Notes, c.CompletedAt, c.CreatedAt, c.UpdatedAt)
	return wrapWrite("create check", err)
}

func (r *InventoryCheckRepo) GetByID(ctx context.Context, id string) (*entity.InventoryCheck, error) {
	return r.getOne(ctx, `SELECT `+checkColumns+` FROM inventory_checks WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: dos cierres concurrentes del mismo conteo se serializan.
func (r *InventoryCheckRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryCheck, error) {
	return r.getOne(ctx, `SELECT `+checkColumns+` FROM inventory_checks WHERE id = $1 FOR UPDATE`, id)
}

func (r *InventoryCheckRepo) GetByNumber(ctx context.Context, number string) (*entity.InventoryCheck, error) {
	return r.getOne(ctx, `SELECT `+checkColumns+` FROM inventory_checks WHERE check_number = $1`, number)
}

func (r *InventoryCheckRepo) getOne(ctx context.Context, query, arg string) (*entity.InventoryCheck, error) {
	c, err := scanCheck(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get check: %w", err)
	}
	if err := r.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *InventoryCheckRepo) hydrate(ctx context.Context, c *entity.InventoryCheck) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, material_id, system_qty, actual_qty, difference, unit, notes
		FROM inventory_check_items WHERE check_id = $1 ORDER BY seq`, c.ID)
	if err != nil {
		return fmt.Errorf("list check items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it := entity.InventoryCheckItem{CheckID: c.ID}
		if err := rows.Scan(&it.ID, &it.MaterialID, &it.SystemQty, &it.ActualQty, &it.Difference,
			&it.Unit, &it.Notes); err != nil {
			return fmt.Errorf("scan check item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	return rows.Err()
}

func (r *InventoryCheckRepo) AddItem(ctx context.Context, it *entity.InventoryCheckItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_check_items (id, check_id, material_id, system_qty, actual_qty, difference, unit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		it.ID, it.CheckID, it.MaterialID, it.SystemQty, it.ActualQty, it.Difference, it.Unit, it.Notes)
	return wrapWrite("add check item", err)
}

func (r *InventoryCheckRepo) UpdateItem(ctx context.Context, it *entity.InventoryCheckItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_check_items
		SET system_qty = $3, actual_qty = $4, difference = $5, notes = $6
		WHERE id = $1 AND check_id = $2`,
		it.ID, it.CheckID, it.SystemQty, it.ActualQty, it.Difference, it.Notes)
	if err != nil {
		return wrapWrite("update check item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("check item", it.ID)
	}
	return nil
}

func (r *InventoryCheckRepo) Complete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_checks SET status = $2, completed_at = $3, updated_at = $3
		WHERE id = $1`, id, entity.CheckStatusCompleted, at)
	if err != nil {
		return wrapWrite("complete check", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("check", id)
	}
	return nil
}

func (r *InventoryCheckRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_checks WHERE id = $1`, id)
	if err != nil {
		return wrapWrite("delete check", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("check", id)
	}
	return nil
}

func (r *InventoryCheckRepo) List(ctx context.Context, f repository.CheckFilter) ([]*entity.InventoryCheck, error) {
	p := f.Page.Normalize()
	rows, err := r.q.Query(ctx, `
		SELECT `+checkColumns+` FROM inventory_checks
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, check_number
		LIMIT $2 OFFSET $3`, f.Status, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	var list []*entity.InventoryCheck
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan check: %w", err)
		}
		list = append(list, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range list {
		if err := r.hydrate(ctx, c); err != nil {
			return nil, err
		}
	}
	return list, nil
}
