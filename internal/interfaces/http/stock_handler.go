package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// StockHandler libro de existencias: entradas, consumos, ajustes y consultas.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Receive godoc
// @Summary      Recibir un lote de proveedor
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "Lote recibido"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Receive(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Lots godoc
// @Summary      Lotes de un material en orden FIFO
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  true  "ID del material"
// @Success      200          {array}   dto.LotResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [get]
func (h *StockHandler) Lots(c *fiber.Ctx) error {
	materialID := c.Query("material_id")
	if materialID == "" {
		return writeError(c, &dto.ValidationError{Fields: map[string]string{"material_id": "requerido"}})
	}
	out, err := h.uc.Lots(c.UserContext(), materialID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Lot godoc
// @Summary      Obtener lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id} [get]
func (h *StockHandler) Lot(c *fiber.Ctx) error {
	out, err := h.uc.Lot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  false  "Material"
// @Param        lot_id       query  string  false  "Lote"
// @Param        type         query  string  false  "RECEIPT | CONSUMPTION | ADJUSTMENT | TRANSFER (alias kind)"
// @Param        batch_id     query  string  false  "Lote de producción"
// @Param        service_order_id  query  string  false  "Orden de servicio"
// @Param        from         query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        to           query  string  false  "Hasta (RFC3339 o AAAA-MM-DD)"
// @Param        limit        query  int     false  "Límite"
// @Param        offset       query  int     false  "Offset"
// @Success      200          {object}  dto.ListResponse[dto.MovementResponse]
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	if q.Type == "" {
		q.Type = c.Query("kind")
	}
	p := repository.Page{Limit: q.Limit, Offset: q.Offset}.Normalize()
	q.Limit, q.Offset = p.Limit, p.Offset
	out, err := h.uc.Movements(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listResponse(out, p))
}

// Consume godoc
// @Summary      Consumo FIFO de un material contra una orden de servicio abierta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeStockRequest  true  "Consumo"
// @Success      201   {array}   dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/consumptions [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Consume(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de un lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Adjust(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Summary godoc
// @Summary      Existencia disponible por material activo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockSummaryItem
// @Router       /api/inventory/summary [get]
func (h *StockHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Materiales bajo su mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockSummaryItem
// @Router       /api/inventory/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Balance del libro de un material
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.LedgerBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id}/ledger [get]
func (h *StockHandler) Ledger(c *fiber.Ctx) error {
	out, err := h.uc.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
