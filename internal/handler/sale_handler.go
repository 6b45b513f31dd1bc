package handler

import (
	"cashflow-api/internal/model"
	"cashflow-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SaleHandler struct {
	service service.SaleService
	log     *zap.Logger
}

func NewSaleHandler(s service.SaleService, log *zap.Logger) *SaleHandler {
	return &SaleHandler{service: s, log: log}
}

type UpdateSaleStatusRequest struct {
	Status model.SaleStatus `json:"status"`
}

// CreateSale registers a cart checkout
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	sale, err := h.service.CreateSale(c.UserContext(), &req, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Sale registered", "data": sale})
}

// UpdateStatus
// PATCH /api/v1/sales/:id/status
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	var req UpdateSaleStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	sale, err := h.service.UpdateStatus(c.UserContext(), id, req.Status, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Sale status updated", "data": sale})
}

func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	page, err := h.service.ListSales(c.UserContext(), queryPage(c, "page"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(sale)
}

// GetClients lists active clients for the cart picker
// GET /api/v1/sales/clients
func (h *SaleHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.service.ListActiveClients(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(clients)
}

// GetProducts searches the cart catalog by name
// GET /api/v1/sales/products?search=
func (h *SaleHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

func (h *SaleHandler) GetItemsSold(c *fiber.Ctx) error {
	total, err := h.service.ItemsSold(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"items_sold": total})
}
