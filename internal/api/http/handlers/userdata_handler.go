package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-desk/internal/api/dto"
	"github.com/spec-kit/market-desk/internal/auth"
	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/service"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

// UserDataHandler serves the caller's own data blob.
type UserDataHandler struct {
	service *service.UserDataService
}

// NewUserDataHandler constructs handler.
func NewUserDataHandler(dataService *service.UserDataService) *UserDataHandler {
	return &UserDataHandler{service: dataService}
}

// Get handles GET /api/user/data.
func (h *UserDataHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Authentication required: No token provided")
	}
	data, err := h.service.GetData(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserDataResponse{Success: true, UserData: data})
}

// Update handles PUT /api/user/data. The body must be a JSON object.
func (h *UserDataHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Authentication required: No token provided")
	}

	var partial domain.UserData
	if err := c.App().Config().JSONDecoder(c.Body(), &partial); err != nil {
		return apperrors.NewValidationError("Request body must be a JSON object", nil)
	}

	merged, err := h.service.UpdateData(c.UserContext(), principal.User.ID, partial)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserDataResponse{
		Success:  true,
		Message:  "Data saved successfully.",
		UserData: merged,
	})
}
