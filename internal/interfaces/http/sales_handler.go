package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// SalesHandler maneja ventas, devoluciones, pagos y deudas (protegido).
type SalesHandler struct {
	svc *sales.Service
}

// NewSalesHandler construye el handler.
func NewSalesHandler(svc *sales.Service) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// Create godoc
// @Summary      Registrar venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Llave de idempotencia"
// @Param        body             body    dto.CreateSaleRequest  true   "Cabecera y líneas"
// @Success      201  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cmd := sales.CreateSaleCommand{
		CustomerID:     in.CustomerID,
		DelegateID:     in.DelegateID,
		CashierID:      GetUserID(c),
		IdempotencyKey: in.IdempotencyKey,
		PaymentMethod:  in.PaymentMethod,
		Paid:           in.Paid,
		Discount:       in.Discount,
		Notes:          in.Notes,
	}
	if cmd.IdempotencyKey == "" {
		cmd.IdempotencyKey = c.Get("Idempotency-Key")
	}
	for _, l := range in.Lines {
		switch l.Kind {
		case string(entity.ItemKindCatalog), "":
			cmd.Lines = append(cmd.Lines, sales.CatalogLine{
				ProductID:       l.ProductID,
				Quantity:        l.Quantity,
				UnitPrice:       l.UnitPrice,
				DiscountPercent: l.DiscountPercent,
				TaxPercent:      l.TaxPercent,
			})
		case string(entity.ItemKindManual):
			cmd.Lines = append(cmd.Lines, sales.ManualLine{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
		default:
			return writeError(c, domain.NewValidationError("kind", "debe ser catalog o manual"))
		}
	}
	sale, err := h.svc.CreateSale(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.svc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Cliente"
// @Param        status       query  string  false  "Estado"
// @Param        from         query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta, exclusivo"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	page := pageFrom(c)
	f := repository.SaleFilter{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	var err error
	if f.From, err = optionalTime(c, "from"); err != nil {
		return writeError(c, err)
	}
	if f.To, err = optionalTime(c, "to"); err != nil {
		return writeError(c, err)
	}
	list, err := h.svc.ListSales(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SaleListResponse{Items: make([]dto.SaleResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, s := range list {
		out.Items = append(out.Items, toSaleResponse(s))
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de ventas del período
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Desde"
// @Param        to    query  string  true  "Hasta, exclusivo"
// @Success      200  {object}  dto.SaleSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/summary [get]
func (h *SalesHandler) Summary(c *fiber.Ctx) error {
	from, err := requiredTime(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := requiredTime(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	sum, err := h.svc.SalesSummary(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SaleSummaryResponse{
		From:        from,
		To:          to,
		Count:       sum.Count,
		NetTotal:    sum.NetTotal,
		PaidTotal:   sum.PaidTotal,
		Outstanding: sum.Outstanding,
	})
}

// Return godoc
// @Summary      Devolución parcial o total
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la venta"
// @Param        body  body  dto.ReturnRequest  true  "Líneas y motivo"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/returns [post]
func (h *SalesHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cmd := sales.ReturnCommand{SaleID: c.Params("id"), Reason: in.Reason, UserID: GetUserID(c)}
	for _, l := range in.Lines {
		cmd.Lines = append(cmd.Lines, sales.ReturnLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	sale, err := h.svc.ProcessReturn(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// ListReturns godoc
// @Summary      Auditoría de devoluciones de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {array}  dto.ReturnResponse
// @Router       /api/sales/{id}/returns [get]
func (h *SalesHandler) ListReturns(c *fiber.Ctx) error {
	list, err := h.svc.ListReturns(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReturnResponse(r))
	}
	return c.JSON(out)
}

// Payment godoc
// @Summary      Registrar abono
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la venta"
// @Param        body  body  dto.PaymentRequest  true  "Monto y medio de pago"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payments [post]
func (h *SalesHandler) Payment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sale, err := h.svc.RecordPayment(c.UserContext(), sales.PaymentCommand{SaleID: c.Params("id"), Amount: in.Amount, Method: in.Method})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// DebtBySale godoc
// @Summary      Deuda abierta de la venta
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.DebtResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/debt [get]
func (h *SalesHandler) DebtBySale(c *fiber.Ctx) error {
	d, err := h.svc.GetDebtBySale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDebtResponse(d))
}

// ListDebts godoc
// @Summary      Listar deudas abiertas
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Cliente"
// @Success      200  {array}  dto.DebtResponse
// @Router       /api/debts [get]
func (h *SalesHandler) ListDebts(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.svc.ListDebts(c.UserContext(), repository.DebtFilter{CustomerID: c.Query("customer_id"), Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.DebtResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDebtResponse(d))
	}
	return c.JSON(out)
}

// CommissionsByDelegate godoc
// @Summary      Comisiones registradas del representante
// @Tags         delegates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del representante"
// @Success      200  {array}  dto.CommissionResponse
// @Router       /api/delegates/{id}/commissions [get]
func (h *SalesHandler) CommissionsByDelegate(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.svc.ListCommissionsByDelegate(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.CommissionResponse, 0, len(list))
	for _, cm := range list {
		out = append(out, toCommissionResponse(cm))
	}
	return c.JSON(out)
}

func pageFrom(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}.Normalize()
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func optionalTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, ok := parseTime(raw)
	if !ok {
		return nil, domain.NewValidationError(key, "fecha inválida")
	}
	return &t, nil
}

func requiredTime(c *fiber.Ctx, key string) (time.Time, error) {
	t, err := optionalTime(c, key)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, domain.NewValidationError(key, "requerido")
	}
	return *t, nil
}
