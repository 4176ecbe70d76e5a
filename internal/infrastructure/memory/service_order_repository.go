package memory

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

// ServiceOrderRepo órdenes de servicio en memoria.
type ServiceOrderRepo struct {
	a *access
}

func (r *ServiceOrderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	return r.a.update(func(d *dataset) error {
		for _, x := range d.serviceOrders {
			if x.ID == o.ID || x.OrderNumber == o.OrderNumber {
				return domain.ErrDuplicate
			}
		}
		d.serviceOrders[o.ID] = cloneServiceOrder(*o)
		return nil
	})
}

func (r *ServiceOrderRepo) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	var out *entity.ServiceOrder
	r.a.view(func(d *dataset) {
		if o, ok := d.serviceOrders[id]; ok {
			oc := cloneServiceOrder(o)
			out = &oc
		}
	})
	return out, nil
}

func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *ServiceOrderRepo) GetByNumber(_ context.Context, number string) (*entity.ServiceOrder, error) {
	var out *entity.ServiceOrder
	r.a.view(func(d *dataset) {
		for _, o := range d.serviceOrders {
			if o.OrderNumber == number {
				oc := cloneServiceOrder(o)
				out = &oc
				return
			}
		}
	})
	return out, nil
}

func (r *ServiceOrderRepo) Update(_ context.Context, o *entity.ServiceOrder) error {
	return r.a.update(func(d *dataset) error {
		cur, ok := d.serviceOrders[o.ID]
		if !ok {
			return domain.NotFound("service order", o.ID)
		}
		next := cloneServiceOrder(*o)
		next.Assignments = cur.Assignments
		next.WorkLogs = cur.WorkLogs
		d.serviceOrders[o.ID] = next
		return nil
	})
}

func (r *ServiceOrderRepo) Delete(_ context.Context, id string) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.serviceOrders[id]; !ok {
			return domain.NotFound("service order", id)
		}
		for _, m := range d.movements {
			if m.ServiceOrderID == id {
				return domain.ErrConflict
			}
		}
		delete(d.serviceOrders, id)
		return nil
	})
}

func (r *ServiceOrderRepo) List(_ context.Context, f repository.ServiceOrderFilter) ([]*entity.ServiceOrder, error) {
	var list []*entity.ServiceOrder
	r.a.view(func(d *dataset) {
		for _, o := range d.serviceOrders {
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.Priority != "" && o.Priority != f.Priority {
				continue
			}
			oc := cloneServiceOrder(o)
			oc.Assignments, oc.WorkLogs = nil, nil
			list = append(list, &oc)
		}
	})
	sortByCreatedDesc(list,
		func(o *entity.ServiceOrder) int64 { return o.CreatedAt.UnixNano() },
		func(o *entity.ServiceOrder) string { return o.OrderNumber })
	return paginate(list, f.Page), nil
}

func (r *ServiceOrderRepo) AddAssignment(_ context.Context, a *entity.ServiceAssignment) error {
	return r.a.update(func(d *dataset) error {
		o, ok := d.serviceOrders[a.OrderID]
		if !ok {
			return domain.NotFound("service order", a.OrderID)
		}
		if o.IsAssigned(a.EngineerID) {
			return domain.ErrDuplicate
		}
		o.Assignments = append(o.Assignments, *a)
		d.serviceOrders[o.ID] = o
		return nil
	})
}

func (r *ServiceOrderRepo) DeleteAssignment(_ context.Context, orderID, assignmentID string) error {
	return r.a.update(func(d *dataset) error {
		o, ok := d.serviceOrders[orderID]
		if !ok {
			return domain.NotFound("service order", orderID)
		}
		for i, a := range o.Assignments {
			if a.ID == assignmentID {
				o.Assignments = append(o.Assignments[:i:i], o.Assignments[i+1:]...)
				d.serviceOrders[orderID] = o
				return nil
			}
		}
		return domain.NotFound("assignment", assignmentID)
	})
}

func (r *ServiceOrderRepo) AddWorkLog(_ context.Context, w *entity.WorkLog) error {
	return r.a.update(func(d *dataset) error {
		o, ok := d.serviceOrders[w.OrderID]
		if !ok {
			return domain.NotFound("service order", w.OrderID)
		}
		o.WorkLogs = append(o.WorkLogs, *w)
		d.serviceOrders[o.ID] = o
		return nil
	})
}
