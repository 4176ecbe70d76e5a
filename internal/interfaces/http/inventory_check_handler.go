package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// InventoryCheckHandler conteos físicos y su cierre con ajustes.
type InventoryCheckHandler struct {
	uc *inventory.ReconciliationUseCase
}

// NewInventoryCheckHandler construye el handler.
func NewInventoryCheckHandler(uc *inventory.ReconciliationUseCase) *InventoryCheckHandler {
	return &InventoryCheckHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir conteo físico
// @Tags         inventory-checks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCheckRequest  true  "Conteo"
// @Success      201   {object}  dto.CheckResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/checks [post]
func (h *InventoryCheckHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCheckRequest
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
// @Summary      Listar conteos
// @Tags         inventory-checks
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "IN_PROGRESS | COMPLETED"
// @Success      200     {object}  dto.ListResponse[dto.CheckResponse]
// @Router       /api/inventory/checks [get]
func (h *InventoryCheckHandler) List(c *fiber.Ctx) error {
	p := pageFrom(c)
	out, err := h.uc.List(c.UserContext(), repository.CheckFilter{Status: c.Query("status"), Page: p})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listResponse(out, p))
}

// Get godoc
// @Summary      Obtener conteo con sus líneas
// @Tags         inventory-checks
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CheckResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/checks/{id} [get]
func (h *InventoryCheckHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar conteo en curso
// @Tags         inventory-checks
// @Security     Bearer
// @Param        id   path  string  true  "ID del conteo"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/checks/{id} [delete]
func (h *InventoryCheckHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem godoc
// @Summary      Registrar línea de conteo
// @Tags         inventory-checks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del conteo"
// @Param        body  body  dto.AddCheckItemRequest  true  "Línea"
// @Success      201   {object}  dto.CheckResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/checks/{id}/items [post]
func (h *InventoryCheckHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCheckItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AddItem(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateItem godoc
// @Summary      Corregir línea de conteo
// @Tags         inventory-checks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID del conteo"
// @Param        itemId  path  string  true  "ID de la línea"
// @Param        body    body  dto.UpdateCheckItemRequest  true  "Cambios"
// @Success      200     {object}  dto.CheckResponse
// @Router       /api/inventory/checks/{id}/items/{itemId} [put]
func (h *InventoryCheckHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCheckItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateItem(c.UserContext(), c.Params("id"), c.Params("itemId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Cerrar conteo y aplicar ajustes
// @Tags         inventory-checks
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CompleteCheckResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/checks/{id}/complete [post]
func (h *InventoryCheckHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
