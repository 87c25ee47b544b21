package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-desk/internal/api/dto"
	"github.com/spec-kit/market-desk/internal/auth"
	"github.com/spec-kit/market-desk/internal/service"
)

// AdminHandler exposes operator endpoints. Routes are gated by auth.RequireAdmin.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{service: adminService}
}

// ListContacts GET /api/admin/contacts.
func (h *AdminHandler) ListContacts(c *fiber.Ctx) error {
	msgs, err := h.service.ListContacts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}

// DeleteContact DELETE /api/admin/contacts/:id.
func (h *AdminHandler) DeleteContact(c *fiber.Ctx) error {
	if err := h.service.DeleteContact(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// DeleteUser DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		return principal.User.ID
	}
	return ""
}
