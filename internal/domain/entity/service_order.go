package entity

import "time"

// Estados de orden de servicio.
const (
	ServiceStatusPlanned    = "PLANNED"
	ServiceStatusAssigned   = "ASSIGNED"
	ServiceStatusInProgress = "IN_PROGRESS"
	ServiceStatusOnHold     = "ON_HOLD"
	ServiceStatusCompleted  = "COMPLETED"
	ServiceStatusCancelled  = "CANCELLED"
)

// Prioridades de orden de servicio.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Estados de una entrada del registro de trabajo.
const (
	WorkLogInProgress = "IN_PROGRESS"
	WorkLogCompleted  = "COMPLETED"
	WorkLogIssue      = "ISSUE"
)

// ServiceOrder trabajo de campo sobre equipos del cliente (instalación, calibración,
// mantenimiento). Los repuestos y consumibles salen del libro de stock contra la orden.
type ServiceOrder struct {
	ID             string
	OrderNumber    string
	CustomerRef    string
	EquipmentType  string
	EquipmentModel string
	Location       string
	Description    string
	Priority       string
	Status         string
	PlannedStart   *time.Time
	PlannedEnd     *time.Time
	ActualStart    *time.Time
	ActualEnd      *time.Time
	Notes          string
	Assignments    []ServiceAssignment
	WorkLogs       []WorkLog
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ServiceAssignment ingeniero asignado a una orden. EngineerID es el sub del token.
type ServiceAssignment struct {
	ID         string
	OrderID    string
	EngineerID string
	Notes      string
	AssignedAt time.Time
}

// WorkLog jornada de trabajo registrada por un ingeniero asignado.
type WorkLog struct {
	ID          string
	OrderID     string
	EngineerID  string
	WorkDate    time.Time
	StartTime   time.Time
	EndTime     *time.Time
	Description string
	Result      string
	Status      string
	CreatedAt   time.Time
}

// IsClosed una orden cerrada no admite consumos, asignaciones ni registros de trabajo.
func (o *ServiceOrder) IsClosed() bool {
	return o.Status == ServiceStatusCompleted || o.Status == ServiceStatusCancelled
}

// IsAssigned reporta si el ingeniero está asignado a la orden.
func (o *ServiceOrder) IsAssigned(engineerID string) bool {
	for _, a := range o.Assignments {
		if a.EngineerID == engineerID {
			return true
		}
	}
	return false
}

// ValidServiceStatus reporta si s es un estado de orden de servicio conocido.
func ValidServiceStatus(s string) bool {
	switch s {
	case ServiceStatusPlanned, ServiceStatusAssigned, ServiceStatusInProgress,
		ServiceStatusOnHold, ServiceStatusCompleted, ServiceStatusCancelled:
		return true
	}
	return false
}

// ValidPriority reporta si p es una prioridad conocida.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
