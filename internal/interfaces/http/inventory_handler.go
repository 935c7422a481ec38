package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
)

// InventoryHandler maneja movimientos manuales y la proyección de stock (protegido).
type InventoryHandler struct {
	uc     *inventory.RegisterMovementUseCase
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{uc: uc, ledger: ledger}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type (purchase|opening|adjustment), quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.uc.RegisterMovement(c.UserContext(), inventory.MovementInput{
		UserID:    GetUserID(c),
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Notes:     in.Notes,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Movimientos del producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.ledger.ListMovements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Stock materializado del producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, err := h.ledger.GetCurrentStock(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, CurrentStock: qty})
}

// ProjectStock godoc
// @Summary      Recalcular el stock desde el libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProjectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock/project [post]
func (h *InventoryHandler) ProjectStock(c *fiber.Ctx) error {
	proj, err := h.ledger.ProjectCurrentStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProjectionResponse(*proj))
}

// Reconcile godoc
// @Summary      Revisar todo el inventario contra el libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        repair  query  bool  false  "Corregir desvíos"
// @Success      200  {object}  inventory.ReconcileReport
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.ledger.Reconcile(c.UserContext(), c.QueryBool("repair", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
