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

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas con ingredientes y parámetros sobre PostgreSQL.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

const recipeColumns = `id, code, name, description, version, is_active, created_at, updated_at`

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var rc entity.Recipe
	if err := row.Scan(&rc.ID, &rc.Code, &rc.Name, &rc.Description, &rc.Version, &rc.IsActive,
		&rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

// Create inserta cabecera, ingredientes y parámetros. Debe llamarse dentro de una tx.
func (r *RecipeRepo) Create(ctx context.Context, rc *entity.Recipe) error {
	query := `INSERT INTO recipes (` + recipeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query, rc.ID, rc.Code, rc.Name, rc.Description, rc.Version,
		rc.IsActive, rc.CreatedAt, rc.UpdatedAt); err != nil {
		return wrapWrite("create recipe", err)
	}
	for i := range rc.Ingredients {
		if err := r.AddIngredient(ctx, &rc.Ingredients[i]); err != nil {
			return err
		}
	}
	for i := range rc.Parameters {
		if err := r.AddParameter(ctx, &rc.Parameters[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.getOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
}

func (r *RecipeRepo) GetByCode(ctx context.Context, code string) (*entity.Recipe, error) {
	return r.getOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE code = $1`, code)
}

func (r *RecipeRepo) getOne(ctx context.Context, query, arg string) (*entity.Recipe, error) {
	rc, err := scanRecipe(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if err := r.hydrate(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *RecipeRepo) hydrate(ctx context.Context, rc *entity.Recipe) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, material_id, quantity, unit FROM recipe_ingredients
		WHERE recipe_id = $1 ORDER BY seq`, rc.ID)
	if err != nil {
		return fmt.Errorf("list ingredients: %w", err)
	}
	rc.Ingredients = nil
	for rows.Next() {
		ing := entity.RecipeIngredient{RecipeID: rc.ID}
		if err := rows.Scan(&ing.ID, &ing.MaterialID, &ing.Quantity, &ing.Unit); err != nil {
			rows.Close()
			return fmt.Errorf("scan ingredient: %w", err)
		}
		rc.Ingredients = append(rc.Ingredients, ing)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, name, value, unit, min_value, max_value FROM recipe_parameters
		WHERE recipe_id = $1 ORDER BY seq`, rc.ID)
	if err != nil {
		return fmt.Errorf("list recipe parameters: %w", err)
	}
	defer rows.Close()
	rc.Parameters = nil
	for rows.Next() {
		var (
			p      = entity.RecipeParameter{RecipeID: rc.ID}
			lo, hi decimal.NullDecimal
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Value, &p.Unit, &lo, &hi); err != nil {
			return fmt.Errorf("scan recipe parameter: %w", err)
		}
		p.MinValue, p.MaxValue = decimalPtr(lo), decimalPtr(hi)
		rc.Parameters = append(rc.Parameters, p)
	}
	return rows.Err()
}

// Update actualiza la cabecera.
func (r *RecipeRepo) Update(ctx context.Context, rc *entity.Recipe) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recipes SET code = $2, name = $3, description = $4, version = $5, is_active = $6, updated_at = $7
		WHERE id = $1`, rc.ID, rc.Code, rc.Name, rc.Description, rc.Version, rc.IsActive, rc.UpdatedAt)
	if err != nil {
		return wrapWrite("update recipe", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("recipe", rc.ID)
	}
	return nil
}

func (r *RecipeRepo) AddIngredient(ctx context.Context, ing *entity.RecipeIngredient) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recipe_ingredients (id, recipe_id, material_id, quantity, unit)
		VALUES ($1, $2, $3, $4, $5)`, ing.ID, ing.RecipeID, ing.MaterialID, ing.Quantity, ing.Unit)
	return wrapWrite("add ingredient", err)
}

func (r *RecipeRepo) AddParameter(ctx context.Context, p *entity.RecipeParameter) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recipe_parameters (id, recipe_id, name, value, unit, min_value, max_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, p.ID, p.RecipeID, p.Name, p.Value, p.Unit, p.MinValue, p.MaxValue)
	return wrapWrite("add recipe parameter", err)
}

// List lista recetas hidratadas por código.
func (r *RecipeRepo) List(ctx context.Context, f repository.RecipeFilter) ([]*entity.Recipe, error) {
	p := f.Page.Normalize()
	rows, err := r.q.Query(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		WHERE (NOT $1 OR is_active)
		ORDER BY code LIMIT $2 OFFSET $3`, f.ActiveOnly, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	var list []*entity.Recipe
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, rc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las filas deben cerrarse antes de hidratar: una tx pgx no admite consultas anidadas.
	for _, rc := range list {
		if err := r.hydrate(ctx, rc); err != nil {
			return nil, err
		}
	}
	return list, nil
}
