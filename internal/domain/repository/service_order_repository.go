package repository

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// ServiceOrderRepository puerto de persistencia de órdenes de servicio.
type ServiceOrderRepository interface {
	Create(ctx context.Context, o *entity.ServiceOrder) error
	// GetByID devuelve la orden con asignaciones y registros de trabajo.
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera de la orden.
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error)
	GetByNumber(ctx context.Context, number string) (*entity.ServiceOrder, error)
	// Update reescribe la cabecera (datos, estado y fechas reales).
	Update(ctx context.Context, o *entity.ServiceOrder) error
	// Delete borra la orden con sus asignaciones y registros de trabajo.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ServiceOrderFilter) ([]*entity.ServiceOrder, error)
	AddAssignment(ctx context.Context, a *entity.ServiceAssignment) error
	DeleteAssignment(ctx context.Context, orderID, assignmentID string) error
	AddWorkLog(ctx context.Context, w *entity.WorkLog) error
}
