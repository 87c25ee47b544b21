package domain

import (
	"strings"
	"time"
)

// Role marks the privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Recognized keys inside the per-user data blob.
const (
	DataKeyWatchlist        = "watchlist"
	DataKeyEconEvents       = "econEvents"
	DataKeyLegacyEconEvents = "econ_events"
)

// UserData is the free-form per-user blob. Top-level keys are the unit of merge.
type UserData map[string]any

// NewUserData returns the blob every new account starts with.
func NewUserData() UserData {
	return UserData{
		DataKeyWatchlist:  []any{},
		DataKeyEconEvents: []any{},
	}
}

// Merge overwrites top-level keys of d with those of partial and returns the result.
// Keys absent from partial are preserved; nested values are replaced, never combined.
func (d UserData) Merge(partial UserData) UserData {
	merged := make(UserData, len(d)+len(partial))
	for k, v := range d {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// EntryCount sums the lengths of the watchlist and economic-calendar arrays.
func (d UserData) EntryCount() int {
	return lenOf(d[DataKeyWatchlist]) + lenOf(d[DataKeyEconEvents]) + lenOf(d[DataKeyLegacyEconEvents])
}

func lenOf(v any) int {
	switch list := v.(type) {
	case []any:
		return len(list)
	case []string:
		return len(list)
	case []map[string]any:
		return len(list)
	default:
		return 0
	}
}

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	EmailLower   string    `json:"-"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Data         UserData  `json:"data"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the stored role grants admin access.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeEmail is the case-insensitive matching key for an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
