package handler

import (
	"cashflow-api/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RoleHandler struct {
	roleRepo repository.RoleRepository
	log      *zap.Logger
}

func NewRoleHandler(roleRepo repository.RoleRepository, log *zap.Logger) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo, log: log}
}

// GetRoles returns all roles with their privileges
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(roles)
}
