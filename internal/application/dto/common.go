package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ListResponse envoltorio de listados.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// StatusRequest cambio de estado (órdenes y lotes de producción).
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate verifica el cuerpo.
func (r StatusRequest) Validate() error {
	return check(r).orNil()
}
