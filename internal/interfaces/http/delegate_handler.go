package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
)

// DelegateHandler maneja representantes comerciales (protegido).
type DelegateHandler struct {
	uc *usecase.DelegateUseCase
}

// NewDelegateHandler construye el handler.
func NewDelegateHandler(uc *usecase.DelegateUseCase) *DelegateHandler {
	return &DelegateHandler{uc: uc}
}

// Create godoc
// @Summary      Crear representante
// @Tags         delegates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDelegateRequest  true  "Nombre y política de comisión"
// @Success      201   {object}  dto.DelegateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/delegates [post]
func (h *DelegateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDelegateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener representante
// @Tags         delegates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del representante"
// @Success      200  {object}  dto.DelegateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/delegates/{id} [get]
func (h *DelegateHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar representantes
// @Tags         delegates
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.DelegateResponse
// @Router       /api/delegates [get]
func (h *DelegateHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdatePolicy godoc
// @Summary      Cambiar política de comisión
// @Tags         delegates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID del representante"
// @Param        body  body  dto.UpdateDelegatePolicyRequest  true  "Nueva política"
// @Success      200   {object}  dto.DelegateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/delegates/{id}/policy [put]
func (h *DelegateHandler) UpdatePolicy(c *fiber.Ctx) error {
	var in dto.UpdateDelegatePolicyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdatePolicy(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
