package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-desk/internal/api/dto"
	"github.com/spec-kit/market-desk/internal/service"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

// ContactHandler accepts contact-form submissions.
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler constructs handler.
func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{service: contactService}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("All fields are required and cannot be empty", nil)
	}

	if _, err := h.service.Submit(c.UserContext(), service.ContactInput{
		Name:    string(req.Name),
		Email:   string(req.Email),
		Message: string(req.Message),
		IP:      c.IP(),
	}); err != nil {
		return err
	}

	return c.JSON(dto.SuccessResponse{
		Success: true,
		Message: "Thank you for your message! We will get back to you soon.",
	})
}
