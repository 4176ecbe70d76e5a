package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// ProductionHandler órdenes y lotes de producción.
type ProductionHandler struct {
	orders  *production.OrderUseCase
	batches *production.BatchUseCase
}

// NewProductionHandler construye el handler.
func NewProductionHandler(orders *production.OrderUseCase, batches *production.BatchUseCase) *ProductionHandler {
	return &ProductionHandler{orders: orders, batches: batches}
}

// CreateOrder godoc
// @Summary      Planificar orden de producción
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Orden"
// @Success      201   {object}  dto.OrderResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/production/orders [post]
func (h *ProductionHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.orders.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListOrders godoc
// @Summary      Listar órdenes
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "Estado"
// @Param        recipe_id  query  string  false  "Receta"
// @Success      200        {object}  dto.ListResponse[dto.OrderResponse]
// @Router       /api/production/orders [get]
func (h *ProductionHandler) ListOrders(c *fiber.Ctx) error {
	p := pageFrom(c)
	out, err := h.orders.List(c.UserContext(), repository.OrderFilter{
		Status:   c.Query("status"),
		RecipeID: c.Query("recipe_id"),
		Page:     p,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listResponse(out, p))
}

// GetOrder godoc
// @Summary      Obtener orden
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/orders/{id} [get]
func (h *ProductionHandler) GetOrder(c *fiber.Ctx) error {
	out, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateOrderStatus godoc
// @Summary      Cambiar estado de la orden
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.StatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production/orders/{id}/status [patch]
func (h *ProductionHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateBatch godoc
// @Summary      Registrar lote de producción (consume materiales FIFO)
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/production/batches [post]
func (h *ProductionHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.batches.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBatches godoc
// @Summary      Listar lotes de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "Estado"
// @Param        order_id   query  string  false  "Orden"
// @Param        recipe_id  query  string  false  "Receta"
// @Success      200        {object}  dto.ListResponse[dto.BatchResponse]
// @Router       /api/production/batches [get]
func (h *ProductionHandler) ListBatches(c *fiber.Ctx) error {
	p := pageFrom(c)
	out, err := h.batches.List(c.UserContext(), repository.BatchFilter{
		Status:   c.Query("status"),
		OrderID:  c.Query("order_id"),
		RecipeID: c.Query("recipe_id"),
		Page:     p,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listResponse(out, p))
}

// GetBatch godoc
// @Summary      Obtener lote con consumos y parámetros
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id} [get]
func (h *ProductionHandler) GetBatch(c *fiber.Ctx) error {
	out, err := h.batches.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateBatchStatus godoc
// @Summary      Cambiar estado del lote
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.StatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/production/batches/{id}/status [patch]
func (h *ProductionHandler) UpdateBatchStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.batches.UpdateStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddBatchParameter godoc
// @Summary      Registrar parámetro medido
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.AddBatchParameterRequest  true  "Parámetro"
// @Success      201   {object}  dto.BatchResponse
// @Router       /api/production/batches/{id}/parameters [post]
func (h *ProductionHandler) AddBatchParameter(c *fiber.Ctx) error {
	var in dto.AddBatchParameterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.batches.AddParameter(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// BatchRecord godoc
// @Summary      Hoja de registro del lote (PDF)
// @Tags         production
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id}/record.pdf [get]
func (h *ProductionHandler) BatchRecord(c *fiber.Ctx) error {
	data, filename, err := h.batches.Record(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(data)
}
