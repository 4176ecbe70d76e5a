package repository

import (
	"fmt"
	"time"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// Límites de paginación.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Page límites de un listado. Limit 0 aplica el valor por defecto.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica valores por defecto y topes.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// MaterialFilter criterios del listado de materiales. Campos vacíos no filtran.
type MaterialFilter struct {
	Category   string
	ActiveOnly bool
	Page
}

// Validate verifica la categoría.
func (f MaterialFilter) Validate() error {
	if f.Category != "" && !entity.ValidCategory(f.Category) {
		return fmt.Errorf("categoría %q: %w", f.Category, domain.ErrInvalidInput)
	}
	return nil
}

// MovementFilter criterios del listado del libro de movimientos.
type MovementFilter struct {
	MaterialID     string
	LotID          string
	Type           string
	BatchID        string
	ServiceOrderID string
	From           *time.Time
	To             *time.Time
	Page
}

// Validate verifica tipo y rango de fechas.
func (f MovementFilter) Validate() error {
	if f.Type != "" && !entity.ValidMovementType(f.Type) {
		return fmt.Errorf("tipo de movimiento %q: %w", f.Type, domain.ErrInvalidInput)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return fmt.Errorf("rango de fechas: %w", domain.ErrInvalidInput)
	}
	return nil
}

// RecipeFilter criterios del listado de recetas.
type RecipeFilter struct {
	ActiveOnly bool
	Page
}

// OrderFilter criterios del listado de órdenes de producción.
type OrderFilter struct {
	Status   string
	RecipeID string
	Page
}

// Validate verifica el estado.
func (f OrderFilter) Validate() error {
	if f.Status != "" && !entity.ValidOrderStatus(f.Status) {
		return fmt.Errorf("estado %q: %w", f.Status, domain.ErrInvalidInput)
	}
	return nil
}

// BatchFilter criterios del listado de lotes de producción.
type BatchFilter struct {
	Status   string
	OrderID  string
	RecipeID string
	Page
}

// Validate verifica el estado.
func (f BatchFilter) Validate() error {
	if f.Status != "" && !entity.ValidBatchStatus(f.Status) {
		return fmt.Errorf("estado %q: %w", f.Status, domain.ErrInvalidInput)
	}
	return nil
}

// CheckFilter criterios del listado de conteos.
type CheckFilter struct {
	Status string
	Page
}

// Validate verifica el estado.
func (f CheckFilter) Validate() error {
	if f.Status != "" && f.Status != entity.CheckStatusInProgress && f.Status != entity.CheckStatusCompleted {
		return fmt.Errorf("estado %q: %w", f.Status, domain.ErrInvalidInput)
	}
	return nil
}

// ServiceOrderFilter criterios del listado de órdenes de servicio.
type ServiceOrderFilter struct {
	Status   string
	Priority string
	Page
}

// Validate verifica estado y prioridad.
func (f ServiceOrderFilter) Validate() error {
	if f.Status != "" && !entity.ValidServiceStatus(f.Status) {
		return fmt.Errorf("estado %q: %w", f.Status, domain.ErrInvalidInput)
	}
	if f.Priority != "" && !entity.ValidPriority(f.Priority) {
		return fmt.Errorf("prioridad %q: %w", f.Priority, domain.ErrInvalidInput)
	}
	return nil
}
