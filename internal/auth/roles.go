package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-desk/internal/domain"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

// AdminPolicy decides admin access from the stored role or a configured allow-list.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy builds a policy from allow-listed addresses (matched case-insensitively).
func NewAdminPolicy(emails []string) *AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if normalized := domain.NormalizeEmail(email); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return &AdminPolicy{emails: set}
}

// AllowListed reports whether the address is on the configured allow-list.
func (p *AdminPolicy) AllowListed(email string) bool {
	if p == nil {
		return false
	}
	_, ok := p.emails[domain.NormalizeEmail(email)]
	return ok
}

// Allows reports whether the user may call admin operations.
func (p *AdminPolicy) Allows(user *domain.User) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || p.AllowListed(user.Email)
}

// RequireAdmin rejects principals the policy does not allow. It must run after
// AuthMiddleware so the principal reflects the current stored record.
func RequireAdmin(policy *AdminPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Authentication required: No token provided")
		}
		if !policy.Allows(principal.User) {
			return apperrors.NewForbidden("Access denied. Admin only.")
		}
		return c.Next()
	}
}
