package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// orderTransitions estados destino admitidos desde cada estado de orden.
var orderTransitions = map[string][]string{
	entity.OrderStatusPlanned:    {entity.OrderStatusInProgress, entity.OrderStatusCancelled},
	entity.OrderStatusInProgress: {entity.OrderStatusCompleted, entity.OrderStatusCancelled},
}

// OrderUseCase casos de uso de órdenes de producción.
type OrderUseCase struct {
	orders  repository.ProductionOrderRepository
	recipes repository.RecipeRepository
	now     func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orders repository.ProductionOrderRepository, recipes repository.RecipeRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, recipes: recipes, now: time.Now}
}

// Create registra una orden PLANNED para una receta activa.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.orders.GetByNumber(ctx, in.OrderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("orden %s: %w", in.OrderNumber, domain.ErrDuplicate)
	}
	recipe, err := uc.recipes.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.NotFound("recipe", in.RecipeID)
	}
	if !recipe.IsActive {
		return nil, domain.ErrInactiveRecipe
	}

	now := uc.now()
	o := &entity.ProductionOrder{
		ID:          uuid.New().String(),
		OrderNumber: in.OrderNumber,
		RecipeID:    recipe.ID,
		PlannedQty:  in.PlannedQty,
		Unit:        in.Unit,
		PlannedDate: in.PlannedDate,
		Deadline:    in.Deadline,
		Status:      entity.OrderStatusPlanned,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	resp := dto.ToOrderResponse(o)
	return &resp, nil
}

// Get obtiene una orden.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("order", id)
	}
	resp := dto.ToOrderResponse(o)
	return &resp, nil
}

// List lista órdenes por estado y receta.
func (uc *OrderUseCase) List(ctx context.Context, f repository.OrderFilter) ([]dto.OrderResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.ToOrderResponse(o))
	}
	return out, nil
}

// UpdateStatus aplica una transición de estado válida.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, id string, in dto.StatusRequest) (*dto.OrderResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !entity.ValidOrderStatus(in.Status) {
		return nil, fmt.Errorf("estado %q: %w", in.Status, domain.ErrInvalidInput)
	}
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("order", id)
	}
	if !allowed(orderTransitions, o.Status, in.Status) {
		return nil, fmt.Errorf("orden %s de %s a %s: %w", o.OrderNumber, o.Status, in.Status, domain.ErrConflict)
	}
	if err := uc.orders.UpdateStatus(ctx, id, in.Status); err != nil {
		return nil, err
	}
	o.Status = in.Status
	resp := dto.ToOrderResponse(o)
	return &resp, nil
}

func allowed(transitions map[string][]string, from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
