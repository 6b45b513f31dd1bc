package handler

import (
	"cashflow-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ClientHandler struct {
	service service.ClientService
	log     *zap.Logger
}

func NewClientHandler(s service.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{service: s, log: log}
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req service.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	client, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Client created", "data": client})
}

func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	var req service.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	client, err := h.service.Update(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Client updated", "data": client})
}

func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Client deleted"})
}

func (h *ClientHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(clients)
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	client, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(client)
}

// GetLastPurchase returns {"last_purchase": null} for clients without sales.
func (h *ClientHandler) GetLastPurchase(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	last, err := h.service.LastPurchase(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"last_purchase": last})
}

func (h *ClientHandler) GetTotalSpent(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	total, err := h.service.TotalSpent(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total_spent": total})
}
