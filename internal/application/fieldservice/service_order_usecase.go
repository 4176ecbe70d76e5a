// Package fieldservice órdenes de servicio técnico: instalación, calibración y
// mantenimiento de equipos en planta del cliente. Los consumibles que gastan salen
// del libro de stock contra la orden (ver inventory.StockUseCase.Consume).
package fieldservice

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

// transitions estados destino admitidos desde cada estado. COMPLETED y CANCELLED son finales.
var transitions = map[string][]string{
	entity.ServiceStatusPlanned: {entity.ServiceStatusAssigned, entity.ServiceStatusInProgress,
		entity.ServiceStatusOnHold, entity.ServiceStatusCancelled},
	entity.ServiceStatusAssigned: {entity.ServiceStatusPlanned, entity.ServiceStatusInProgress,
		entity.ServiceStatusOnHold, entity.ServiceStatusCancelled},
	entity.ServiceStatusInProgress: {entity.ServiceStatusOnHold, entity.ServiceStatusCompleted,
		entity.ServiceStatusCancelled},
	entity.ServiceStatusOnHold: {entity.ServiceStatusAssigned, entity.ServiceStatusInProgress,
		entity.ServiceStatusCancelled},
}

// ServiceOrderUseCase casos de uso de órdenes de servicio.
type ServiceOrderUseCase struct {
	repos    repository.Repos
	txRunner repository.TxRunner
	now      func() time.Time
}

// NewServiceOrderUseCase construye el caso de uso.
func NewServiceOrderUseCase(repos repository.Repos, txRunner repository.TxRunner) *ServiceOrderUseCase {
	return &ServiceOrderUseCase{repos: repos, txRunner: txRunner, now: time.Now}
}

// Create registra una orden PLANNED. Sin prioridad queda MEDIUM.
func (uc *ServiceOrderUseCase) Create(ctx context.Context, in dto.CreateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repos.ServiceOrders.GetByNumber(ctx, in.OrderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("orden de servicio %s: %w", in.OrderNumber, domain.ErrDuplicate)
	}
	now := uc.now()
	o := &entity.ServiceOrder{
		ID:             uuid.New().String(),
		OrderNumber:    in.OrderNumber,
		CustomerRef:    in.CustomerRef,
		EquipmentType:  in.EquipmentType,
		EquipmentModel: in.EquipmentModel,
		Location:       in.Location,
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         entity.ServiceStatusPlanned,
		PlannedStart:   in.PlannedStart,
		PlannedEnd:     in.PlannedEnd,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if o.Priority == "" {
		o.Priority = entity.PriorityMedium
	}
	if err := uc.repos.ServiceOrders.Create(ctx, o); err != nil {
		return nil, err
	}
	resp := dto.ToServiceOrderResponse(o)
	return &resp, nil
}

// Get devuelve la orden con asignaciones, registros de trabajo y los movimientos del
// libro cargados contra ella.
func (uc *ServiceOrderUseCase) Get(ctx context.Context, id string) (*dto.ServiceOrderResponse, error) {
	o, err := uc.repos.ServiceOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("service order", id)
	}
	resp := dto.ToServiceOrderResponse(o)
	page := repository.Page{Limit: repository.MaxPageLimit}
	for {
		movs, err := uc.repos.Movements.List(ctx, repository.MovementFilter{ServiceOrderID: o.ID, Page: page})
		if err != nil {
			return nil, err
		}
		resp.Movements = append(resp.Movements, dto.ToMovementResponses(movs)...)
		if len(movs) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}
	return &resp, nil
}

// List lista órdenes por estado y prioridad, más recientes primero.
func (uc *ServiceOrderUseCase) List(ctx context.Context, f repository.ServiceOrderFilter) ([]dto.ServiceOrderResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.ServiceOrders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServiceOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.ToServiceOrderResponse(o))
	}
	return out, nil
}

// Update modifica los datos de una orden abierta.
func (uc *ServiceOrderUseCase) Update(ctx context.Context, id string, in dto.UpdateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out *entity.ServiceOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		o, err := lockOpenOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		setIf(&o.CustomerRef, in.CustomerRef)
		setIf(&o.EquipmentType, in.EquipmentType)
		setIf(&o.EquipmentModel, in.EquipmentModel)
		setIf(&o.Location, in.Location)
		setIf(&o.Description, in.Description)
		setIf(&o.Priority, in.Priority)
		setIf(&o.Notes, in.Notes)
		if in.PlannedStart != nil {
			o.PlannedStart = in.PlannedStart
		}
		if in.PlannedEnd != nil {
			o.PlannedEnd = in.PlannedEnd
		}
		if o.PlannedStart != nil && o.PlannedEnd != nil && o.PlannedEnd.Before(*o.PlannedStart) {
			return fmt.Errorf("planned_end anterior a planned_start: %w", domain.ErrInvalidInput)
		}
		o.UpdatedAt = uc.now()
		out = o
		return tx.ServiceOrders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToServiceOrderResponse(out)
	return &resp, nil
}

// UpdateStatus aplica una transición válida. IN_PROGRESS fija el inicio real si falta
// y COMPLETED el fin real.
func (uc *ServiceOrderUseCase) UpdateStatus(ctx context.Context, id string, in dto.StatusRequest) (*dto.ServiceOrderResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !entity.ValidServiceStatus(in.Status) {
		return nil, fmt.Errorf("estado %q: %w", in.Status, domain.ErrInvalidInput)
	}
	var out *entity.ServiceOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		o, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if !allowed(o.Status, in.Status) {
			return fmt.Errorf("orden de servicio %s de %s a %s: %w", o.OrderNumber, o.Status, in.Status, domain.ErrConflict)
		}
		now := uc.now()
		o.Status = in.Status
		switch in.Status {
		case entity.ServiceStatusInProgress:
			if o.ActualStart == nil {
				o.ActualStart = &now
			}
		case entity.ServiceStatusCompleted:
			o.ActualEnd = &now
		}
		o.UpdatedAt = now
		out = o
		return tx.ServiceOrders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToServiceOrderResponse(out)
	return &resp, nil
}

// Delete borra una orden sin movimientos de stock.
func (uc *ServiceOrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		o, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		movs, err := tx.Movements.List(ctx, repository.MovementFilter{ServiceOrderID: o.ID, Page: repository.Page{Limit: 1}})
		if err != nil {
			return err
		}
		if len(movs) > 0 {
			return fmt.Errorf("orden de servicio %s tiene movimientos de stock: %w", o.OrderNumber, domain.ErrConflict)
		}
		return tx.ServiceOrders.Delete(ctx, o.ID)
	})
}

// AssignEngineer asigna un ingeniero. La primera asignación pasa la orden de PLANNED a ASSIGNED.
func (uc *ServiceOrderUseCase) AssignEngineer(ctx context.Context, id string, in dto.AssignEngineerRequest) (*dto.ServiceOrderResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out *entity.ServiceOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		o, err := lockOpenOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if o.IsAssigned(in.EngineerID) {
			return fmt.Errorf("ingeniero %s ya asignado: %w", in.EngineerID, domain.ErrDuplicate)
		}
		now := uc.now()
		a := entity.ServiceAssignment{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			EngineerID: in.EngineerID,
			Notes:      in.Notes,
			AssignedAt: now,
		}
		if err := tx.ServiceOrders.AddAssignment(ctx, &a); err != nil {
			return err
		}
		o.Assignments = append(o.Assignments, a)
		if o.Status == entity.ServiceStatusPlanned {
			o.Status = entity.ServiceStatusAssigned
			o.UpdatedAt = now
			if err := tx.ServiceOrders.Update(ctx, o); err != nil {
				return err
			}
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToServiceOrderResponse(out)
	return &resp, nil
}

// RemoveEngineer quita una asignación de una orden abierta.
func (uc *ServiceOrderUseCase) RemoveEngineer(ctx context.Context, id, assignmentID string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		if _, err := lockOpenOrder(ctx, tx, id); err != nil {
			return err
		}
		return tx.ServiceOrders.DeleteAssignment(ctx, id, assignmentID)
	})
}

// AddWorkLog registra una jornada del ingeniero autenticado, que debe estar asignado.
// El primer registro sobre una orden PLANNED o ASSIGNED la pone IN_PROGRESS.
func (uc *ServiceOrderUseCase) AddWorkLog(ctx context.Context, engineerID, id string, in dto.AddWorkLogRequest) (*dto.WorkLogResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out entity.WorkLog
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		o, err := lockOpenOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if !o.IsAssigned(engineerID) {
			return fmt.Errorf("ingeniero %s no asignado a %s: %w", engineerID, o.OrderNumber, domain.ErrForbidden)
		}
		now := uc.now()
		w := entity.WorkLog{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			EngineerID:  engineerID,
			WorkDate:    in.StartTime,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			Description: in.Description,
			Result:      in.Result,
			Status:      in.Status,
			CreatedAt:   now,
		}
		if in.WorkDate != nil {
			w.WorkDate = *in.WorkDate
		}
		y, m, d := w.WorkDate.Date()
		w.WorkDate = time.Date(y, m, d, 0, 0, 0, 0, w.WorkDate.Location())
		if w.Status == "" {
			w.Status = entity.WorkLogInProgress
		}
		if err := tx.ServiceOrders.AddWorkLog(ctx, &w); err != nil {
			return err
		}
		if o.Status == entity.ServiceStatusPlanned || o.Status == entity.ServiceStatusAssigned {
			o.Status = entity.ServiceStatusInProgress
			if o.ActualStart == nil {
				start := in.StartTime
				o.ActualStart = &start
			}
			o.UpdatedAt = now
			if err := tx.ServiceOrders.Update(ctx, o); err != nil {
				return err
			}
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToWorkLogResponse(out)
	return &resp, nil
}

func lockOrder(ctx context.Context, tx repository.Repos, id string) (*entity.ServiceOrder, error) {
	o, err := tx.ServiceOrders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("service order", id)
	}
	return o, nil
}

// lockOpenOrder bloquea la orden y rechaza las cerradas.
func lockOpenOrder(ctx context.Context, tx repository.Repos, id string) (*entity.ServiceOrder, error) {
	o, err := lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if o.IsClosed() {
		return nil, fmt.Errorf("orden de servicio %s en estado %s: %w", o.OrderNumber, o.Status, domain.ErrConflict)
	}
	return o, nil
}

func allowed(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
