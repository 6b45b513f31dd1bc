package handler

import (
	"cashflow-api/internal/model"
	"cashflow-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Auth     *AuthHandler
	Role     *RoleHandler
	Client   *ClientHandler
	Supplier *SupplierHandler
	Category *CategoryHandler
	Product  *ProductHandler
	Sale     *SaleHandler
	Expense  *ExpenseHandler
	Report   *ReportHandler
}

// RegisterRoutes mounts the /api/v1 surface. Everything except login sits
// behind auth; mutations additionally require a privilege.
func RegisterRoutes(app *fiber.App, h Handlers, auth middleware.Authenticator) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/auth/login", h.Auth.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(auth))
	need := middleware.RequirePrivilege

	protected.Get("/roles", h.Role.GetRoles)

	clients := protected.Group("/clients")
	clients.Get("/", h.Client.GetClients)
	clients.Get("/:id", h.Client.GetClient)
	clients.Get("/:id/last-purchase", h.Client.GetLastPurchase)
	clients.Get("/:id/total-spent", h.Client.GetTotalSpent)
	clients.Post("/", need(model.PrivClientManage), h.Client.CreateClient)
	clients.Put("/:id", need(model.PrivClientManage), h.Client.UpdateClient)
	clients.Delete("/:id", need(model.PrivClientManage), h.Client.DeleteClient)

	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", h.Supplier.GetSuppliers)
	suppliers.Get("/all", h.Supplier.GetAllSuppliers)
	suppliers.Get("/:id", h.Supplier.GetSupplier)
	suppliers.Post("/", need(model.PrivSupplierManage), h.Supplier.CreateSupplier)
	suppliers.Put("/:id", need(model.PrivSupplierManage), h.Supplier.UpdateSupplier)
	suppliers.Delete("/:id", need(model.PrivSupplierManage), h.Supplier.DeleteSupplier)

	categories := protected.Group("/categories")
	categories.Get("/", h.Category.GetCategories)
	categories.Post("/", need(model.PrivCategoryManage), h.Category.CreateCategory)
	categories.Put("/:id", need(model.PrivCategoryManage), h.Category.UpdateCategory)
	categories.Delete("/:id", need(model.PrivCategoryManage), h.Category.DeleteCategory)

	products := protected.Group("/products")
	products.Get("/", h.Product.GetProducts)
	products.Get("/count", h.Product.GetCount)
	products.Get("/lifetime-stock", h.Product.GetLifetimeStock)
	products.Get("/stock-sum", h.Product.GetStockSum)
	products.Get("/:id", h.Product.GetProduct)
	products.Post("/", need(model.PrivProductCreate), h.Product.CreateProduct)
	products.Put("/:id", need(model.PrivProductUpdate), h.Product.UpdateProduct)
	products.Delete("/:id", need(model.PrivProductDelete), h.Product.DeleteProduct)

	sales := protected.Group("/sales")
	sales.Get("/clients", h.Sale.GetClients)
	sales.Get("/products", h.Sale.GetProducts)
	sales.Get("/items-sold", h.Sale.GetItemsSold)
	sales.Get("/", h.Sale.GetSales)
	sales.Get("/:id", h.Sale.GetSale)
	sales.Post("/", need(model.PrivSaleCreate), h.Sale.CreateSale)
	sales.Patch("/:id/status", need(model.PrivSaleUpdate), h.Sale.UpdateStatus)

	expenses := protected.Group("/expenses")
	expenses.Get("/", h.Expense.GetExpenses)
	expenses.Post("/", need(model.PrivExpenseManage), h.Expense.CreateExpense)
	expenses.Delete("/:id", need(model.PrivExpenseManage), h.Expense.DeleteExpense)

	reports := protected.Group("/reports", need(model.PrivReportView))
	reports.Get("/dashboard", h.Report.GetDashboard)
	reports.Get("/financial", h.Report.GetFinancial)
	reports.Get("/sell-through", h.Report.GetSellThrough)
}
