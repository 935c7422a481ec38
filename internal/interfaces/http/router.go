package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sales            *sales.Service
	Ledger           *inventory.Ledger
	RegisterMovement *inventory.RegisterMovementUseCase
	ProductUC        *usecase.ProductUseCase
	CustomerUC       *usecase.CustomerUseCase
	DelegateUC       *usecase.DelegateUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleCajero, jwt.RoleBodeguero)
	cashier := RequireRole(jwt.RoleAdmin, jwt.RoleCajero)
	stock := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admin := RequireRole(jwt.RoleAdmin)

	// Sales
	salesHandler := NewSalesHandler(deps.Sales)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", cashier, salesHandler.Create)
	salesGroup.Get("/", anyRole, salesHandler.List)
	salesGroup.Get("/summary", admin, salesHandler.Summary)
	salesGroup.Get("/:id", anyRole, salesHandler.GetByID)
	salesGroup.Post("/:id/returns", cashier, salesHandler.Return)
	salesGroup.Get("/:id/returns", anyRole, salesHandler.ListReturns)
	salesGroup.Post("/:id/payments", cashier, salesHandler.Payment)
	salesGroup.Get("/:id/debt", anyRole, salesHandler.DebtBySale)
	api.Get("/debts", anyRole, salesHandler.ListDebts)

	// Products + stock
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Ledger)
	products := api.Group("/products")
	products.Post("/", stock, productHandler.Create)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/barcode/:code", anyRole, productHandler.GetByBarcode)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", stock, productHandler.Update)
	products.Get("/:id/stock", anyRole, inventoryHandler.GetStock)
	products.Post("/:id/stock/project", stock, inventoryHandler.ProjectStock)
	products.Get("/:id/movements", stock, inventoryHandler.ListMovements)

	// Inventory movements
	invGroup := api.Group("/inventory")
	invGroup.Post("/movements", stock, inventoryHandler.RegisterMovement)
	invGroup.Post("/reconcile", admin, inventoryHandler.Reconcile)

	// Customers
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := api.Group("/customers")
	customers.Post("/", cashier, customerHandler.Create)
	customers.Get("/", anyRole, customerHandler.List)
	customers.Get("/:id", anyRole, customerHandler.GetByID)

	// Delegates
	delegateHandler := NewDelegateHandler(deps.DelegateUC)
	delegates := api.Group("/delegates")
	delegates.Post("/", admin, delegateHandler.Create)
	delegates.Get("/", anyRole, delegateHandler.List)
	delegates.Get("/:id", anyRole, delegateHandler.GetByID)
	delegates.Put("/:id/policy", admin, delegateHandler.UpdatePolicy)
	delegates.Get("/:id/commissions", admin, salesHandler.CommissionsByDelegate)
}
