package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, code, name, category, unit, min_stock, description, is_active, created_at, updated_at`

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var (
		m        entity.Material
		minStock decimal.NullDecimal
	)
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Category, &m.Unit, &minStock,
		&m.Description, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.MinStock = decimalPtr(minStock)
	return &m, nil
}

// Create inserta un material.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Code, m.Name, m.Category, m.Unit, m.MinStock,
		m.Description, m.IsActive, m.CreatedAt, m.UpdatedAt)
	return wrapWrite("create material", err)
}

// GetByID obtiene un material; (nil, nil) si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
}

// GetByCode busca por código único.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materials WHERE code = $1`, code)
}

func (r *MaterialRepo) getOne(ctx context.Context, query string, arg string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// Update actualiza los campos editables.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials
		SET name = $2, category = $3, min_stock = $4, description = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Category, m.MinStock, m.Description, m.IsActive, m.UpdatedAt)
	if err != nil {
		return wrapWrite("update material", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("material", m.ID)
	}
	return nil
}

// List lista materiales por código.
func (r *MaterialRepo) List(ctx context.Context, f repository.MaterialFilter) ([]*entity.Material, error) {
	p := f.Page.Normalize()
	query := `
		SELECT ` + materialColumns + `
		FROM materials
		WHERE ($1 = '' OR category = $1) AND (NOT $2 OR is_active)
		ORDER BY code
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Category, f.ActiveOnly, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// IsReferenced indica si algún lote o ingrediente apunta al material.
func (r *MaterialRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_lots WHERE material_id = $1)
		    OR EXISTS (SELECT 1 FROM recipe_ingredients WHERE material_id = $1)`
	var used bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&used); err != nil {
		return false, fmt.Errorf("material referenced: %w", err)
	}
	return used, nil
}

// Delete elimina el material.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete material: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("material", id)
	}
	return nil
}
