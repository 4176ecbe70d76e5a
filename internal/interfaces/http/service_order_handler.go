package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/fieldservice"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// ServiceOrderHandler órdenes de servicio técnico.
type ServiceOrderHandler struct {
	uc *fieldservice.ServiceOrderUseCase
}

// NewServiceOrderHandler construye el handler.
func NewServiceOrderHandler(uc *fieldservice.ServiceOrderUseCase) *ServiceOrderHandler {
	return &ServiceOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de servicio
// @Tags         service
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateServiceOrderRequest  true  "Orden de servicio"
// @Success      201   {object}  dto.ServiceOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/service/orders [post]
func (h *ServiceOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateServiceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de servicio
// @Tags         service
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Estado"
// @Param        priority  query  string  false  "Prioridad"
// @Success      200       {object}  dto.ListResponse[dto.ServiceOrderResponse]
// @Router       /api/service/orders [get]
func (h *ServiceOrderHandler) List(c *fiber.Ctx) error {
	p := pageFrom(c)
	out, err := h.uc.List(c.UserContext(), repository.ServiceOrderFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Page:     p,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listResponse(out, p))
}

// Get godoc
// @Summary      Obtener orden de servicio con sus movimientos de stock
// @Tags         service
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ServiceOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id} [get]
func (h *ServiceOrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar orden de servicio
// @Tags         service
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdateServiceOrderRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ServiceOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id} [put]
func (h *ServiceOrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateServiceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la orden de servicio
// @Tags         service
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.StatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.ServiceOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id}/status [patch]
func (h *ServiceOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar orden de servicio sin movimientos
// @Tags         service
// @Security     Bearer
// @Param        id  path  string  true  "ID de la orden"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id} [delete]
func (h *ServiceOrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Assign godoc
// @Summary      Asignar ingeniero
// @Tags         service
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AssignEngineerRequest  true  "Ingeniero"
// @Success      201   {object}  dto.ServiceOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id}/assignments [post]
func (h *ServiceOrderHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignEngineerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AssignEngineer(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Unassign godoc
// @Summary      Quitar asignación
// @Tags         service
// @Security     Bearer
// @Param        id            path  string  true  "ID de la orden"
// @Param        assignmentId  path  string  true  "ID de la asignación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id}/assignments/{assignmentId} [delete]
func (h *ServiceOrderHandler) Unassign(c *fiber.Ctx) error {
	if err := h.uc.RemoveEngineer(c.UserContext(), c.Params("id"), c.Params("assignmentId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddWorkLog godoc
// @Summary      Registrar jornada de trabajo (ingeniero autenticado)
// @Tags         service
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AddWorkLogRequest  true  "Jornada"
// @Success      201   {object}  dto.WorkLogResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/service/orders/{id}/work-logs [post]
func (h *ServiceOrderHandler) AddWorkLog(c *fiber.Ctx) error {
	var in dto.AddWorkLogRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AddWorkLog(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
