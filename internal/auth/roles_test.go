package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/market-desk/internal/domain"
)

func TestAdminPolicy(t *testing.T) {
	policy := NewAdminPolicy([]string{"Admin@Example.com", ""})

	assert.True(t, policy.Allows(&domain.User{Email: "admin@example.com", Role: domain.RoleUser}))
	assert.True(t, policy.Allows(&domain.User{Email: "ops@example.com", Role: domain.RoleAdmin}))
	assert.False(t, policy.Allows(&domain.User{Email: "trader@example.com", Role: domain.RoleUser}))
	assert.False(t, policy.Allows(nil))

	var none *AdminPolicy
	assert.False(t, none.AllowListed("admin@example.com"))
}
