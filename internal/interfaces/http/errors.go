package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
)

// duplicateResponse cuerpo 409 de venta duplicada; incluye la venta ya registrada.
type duplicateResponse struct {
	dto.ErrorResponse
	ExistingSaleID string `json:"existing_sale_id,omitempty"`
}

// writeError traduce errores de dominio a códigos HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var (
		verr  *domain.ValidationError
		dup   *domain.DuplicateSaleError
		stock *domain.InsufficientStockError
		rng   *domain.RangeError
		nf    *domain.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error(), Field: verr.Field})
	case errors.As(err, &dup):
		return c.Status(fiber.StatusConflict).JSON(duplicateResponse{
			ErrorResponse:  dto.ErrorResponse{Code: "DUPLICATE_SALE", Message: dup.Error()},
			ExistingSaleID: dup.ExistingSaleID,
		})
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stock.Error()})
	case errors.As(err, &rng):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RETURN_OUT_OF_RANGE", Message: rng.Error()})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: nf.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
