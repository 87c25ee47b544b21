package domain

import "time"

// UserSummary is the admin view of an account.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Joined    string    `json:"joined"`
	CreatedAt time.Time `json:"createdAt"`
	DataCount int       `json:"dataCount"`
}
