package handler

import (
	"cashflow-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	service service.ExpenseService
	log     *zap.Logger
}

func NewExpenseHandler(s service.ExpenseService, log *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{service: s, log: log}
}

func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	var req service.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	expense, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Expense created", "data": expense})
}

func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}

func (h *ExpenseHandler) GetExpenses(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), queryPage(c, "page"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}
