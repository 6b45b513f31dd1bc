package handler

import (
	"time"

	"cashflow-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	service service.ReportService
	log     *zap.Logger
	now     func() time.Time
}

func NewReportHandler(s service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{service: s, log: log, now: time.Now}
}

// GetDashboard
// GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	dash, err := h.service.Dashboard(c.UserContext(), h.now())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dash)
}

// GetFinancial
// GET /api/v1/reports/financial?sales_page=&expenses_page=
func (h *ReportHandler) GetFinancial(c *fiber.Ctx) error {
	report, err := h.service.Financial(c.UserContext(), queryPage(c, "sales_page"), queryPage(c, "expenses_page"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) GetSellThrough(c *fiber.Ctx) error {
	result, err := h.service.SellThrough(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}
