package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("operación no permitida para el usuario")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInactiveRecipe    = errors.New("la receta no está activa")
	ErrAlreadyCompleted  = errors.New("el conteo de inventario ya fue completado")
	ErrEmptyCheck        = errors.New("el conteo de inventario no tiene ítems")
)

// NotFoundError identifica la entidad que no se encontró. errors.Is(err, ErrNotFound) es true.
type NotFoundError struct {
	Entity string // material, recipe, order, batch, lot, check, item, service order
	ID     string
}

// NotFound construye un *NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError describe el primer material sin existencias suficientes.
// También se usa cuando una transacción concurrente consumió el stock entre la
// verificación previa y el commit.
type InsufficientStockError struct {
	MaterialID   string
	MaterialCode string
	Required     decimal.Decimal
	Available    decimal.Decimal
	Unit         string
}

func (e *InsufficientStockError) Error() string {
	ref := e.MaterialCode
	if ref == "" {
		ref = e.MaterialID
	}
	return fmt.Sprintf("stock insuficiente para %s: requerido %s %s, disponible %s %s",
		ref, e.Required.String(), e.Unit, e.Available.String(), e.Unit)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
