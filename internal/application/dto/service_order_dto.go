package dto

import "time"

// CreateServiceOrderRequest body para POST /api/service/orders.
type CreateServiceOrderRequest struct {
	OrderNumber    string     `json:"order_number" validate:"required,max=50"`
	CustomerRef    string     `json:"customer_ref,omitempty" validate:"max=150"`
	EquipmentType  string     `json:"equipment_type,omitempty" validate:"max=100"`
	EquipmentModel string     `json:"equipment_model,omitempty" validate:"max=100"`
	Location       string     `json:"location,omitempty" validate:"max=255"`
	Description    string     `json:"description,omitempty"`
	Priority       string     `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	PlannedStart   *time.Time `json:"planned_start,omitempty"`
	PlannedEnd     *time.Time `json:"planned_end,omitempty"`
	Notes          string     `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r CreateServiceOrderRequest) Validate() error {
	errs := check(r)
	plannedRange(errs, r.PlannedStart, r.PlannedEnd)
	return errs.orNil()
}

// UpdateServiceOrderRequest body para PUT /api/service/orders/:id. Los campos nil no cambian.
type UpdateServiceOrderRequest struct {
	CustomerRef    *string    `json:"customer_ref,omitempty" validate:"omitempty,max=150"`
	EquipmentType  *string    `json:"equipment_type,omitempty" validate:"omitempty,max=100"`
	EquipmentModel *string    `json:"equipment_model,omitempty" validate:"omitempty,max=100"`
	Location       *string    `json:"location,omitempty" validate:"omitempty,max=255"`
	Description    *string    `json:"description,omitempty"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	PlannedStart   *time.Time `json:"planned_start,omitempty"`
	PlannedEnd     *time.Time `json:"planned_end,omitempty"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Validate verifica el cuerpo.
func (r UpdateServiceOrderRequest) Validate() error {
	errs := check(r)
	plannedRange(errs, r.PlannedStart, r.PlannedEnd)
	return errs.orNil()
}

func plannedRange(errs *ValidationError, start, end *time.Time) {
	if start != nil && end != nil && end.Before(*start) {
		errs.add("planned_end", "anterior a planned_start")
	}
}

// AssignEngineerRequest body para POST /api/service/orders/:id/assignments.
type AssignEngineerRequest struct {
	EngineerID string `json:"engineer_id" validate:"required,max=100"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r AssignEngineerRequest) Validate() error {
	return check(r).orNil()
}

// AddWorkLogRequest body para POST /api/service/orders/:id/work-logs. El ingeniero es el
// usuario autenticado.
type AddWorkLogRequest struct {
	WorkDate    *time.Time `json:"work_date,omitempty"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Description string     `json:"description" validate:"required"`
	Result      string     `json:"result,omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=IN_PROGRESS COMPLETED ISSUE"`
}

// Validate verifica el cuerpo.
func (r AddWorkLogRequest) Validate() error {
	errs := check(r)
	if r.EndTime != nil && r.EndTime.Before(r.StartTime) {
		errs.add("end_time", "anterior a start_time")
	}
	return errs.orNil()
}

// AssignmentResponse ingeniero asignado en respuestas.
type AssignmentResponse struct {
	ID         string    `json:"id"`
	EngineerID string    `json:"engineer_id"`
	Notes      string    `json:"notes,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// WorkLogResponse registro de trabajo en respuestas.
type WorkLogResponse struct {
	ID          string     `json:"id"`
	EngineerID  string     `json:"engineer_id"`
	WorkDate    time.Time  `json:"work_date"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Description string     `json:"description"`
	Result      string     `json:"result,omitempty"`
	Status      string     `json:"status"`
}

// ServiceOrderResponse orden de servicio. Movements solo en el detalle.
type ServiceOrderResponse struct {
	ID             string               `json:"id"`
	OrderNumber    string               `json:"order_number"`
	CustomerRef    string               `json:"customer_ref,omitempty"`
	EquipmentType  string               `json:"equipment_type,omitempty"`
	EquipmentModel string               `json:"equipment_model,omitempty"`
	Location       string               `json:"location,omitempty"`
	Description    string               `json:"description,omitempty"`
	Priority       string               `json:"priority"`
	Status         string               `json:"status"`
	PlannedStart   *time.Time           `json:"planned_start,omitempty"`
	PlannedEnd     *time.Time           `json:"planned_end,omitempty"`
	ActualStart    *time.Time           `json:"actual_start,omitempty"`
	ActualEnd      *time.Time           `json:"actual_end,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Assignments    []AssignmentResponse `json:"assignments"`
	WorkLogs       []WorkLogResponse    `json:"work_logs"`
	Movements      []MovementResponse   `json:"movements,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
