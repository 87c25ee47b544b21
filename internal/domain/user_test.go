package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergePreservesUntouchedKeys(t *testing.T) {
	stored := UserData{"watchlist": []any{"EURUSD"}, "theme": "dark"}
	merged := stored.Merge(UserData{"econEvents": []any{map[string]any{"title": "NFP"}}})

	assert.Equal(t, []any{"EURUSD"}, merged["watchlist"])
	assert.Equal(t, "dark", merged["theme"])
	assert.Len(t, merged["econEvents"], 1)
	assert.NotContains(t, stored, "econEvents", "merge must not mutate the receiver")
}

func TestMergeReplacesArraysWholesale(t *testing.T) {
	stored := UserData{"watchlist": []any{"A"}}
	merged := stored.Merge(UserData{"watchlist": []any{"B"}})

	assert.Equal(t, []any{"B"}, merged["watchlist"])
}

func TestEntryCount(t *testing.T) {
	d := UserData{
		"watchlist":   []any{"EURUSD", "GBPUSD"},
		"econEvents":  []any{map[string]any{}},
		"econ_events": []any{map[string]any{}, map[string]any{}},
		"notes":       []any{"ignored"},
	}
	assert.Equal(t, 5, d.EntryCount())
	assert.Equal(t, 0, UserData{}.EntryCount())
	assert.Equal(t, 0, UserData{"watchlist": "not-a-list"}.EntryCount())
}

func TestNewUserDataStartsEmpty(t *testing.T) {
	d := NewUserData()
	assert.Equal(t, 0, d.EntryCount())
	assert.Contains(t, d, DataKeyWatchlist)
	assert.Contains(t, d, DataKeyEconEvents)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "trader@example.com", NormalizeEmail("  Trader@Example.COM "))
}

func TestIsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}
