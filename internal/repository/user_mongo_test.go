package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/spec-kit/market-desk/internal/domain"
)

func TestDataSetDocumentAddressesTopLevelKeys(t *testing.T) {
	set, err := dataSetDocument(domain.UserData{"watchlist": []string{"EURUSD"}})
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "data.watchlist", set[0].Key)
	assert.Equal(t, []string{"EURUSD"}, set[0].Value)
}

func TestDataSetDocumentRejectsOperatorKeys(t *testing.T) {
	for _, key := range []string{"", "a.b", "$where"} {
		_, err := dataSetDocument(domain.UserData{key: 1})
		assert.Error(t, err, key)
	}
}

func TestNormalizeBSONValueFlattensDriverTypes(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	in := map[string]any{
		"watchlist": bson.A{"EURUSD", "USDJPY"},
		"econEvents": bson.A{
			bson.D{{Key: "time", Value: "08:30"}, {Key: "title", Value: "NFP"}, {Key: "impact", Value: "high"}},
		},
		"prefs": bson.M{"nested": bson.A{bson.D{{Key: "x", Value: int32(1)}}}},
		"seen":  bson.NewDateTimeFromTime(when),
	}

	out := normalizeBSONMap(in)

	assert.Equal(t, []any{"EURUSD", "USDJPY"}, out["watchlist"])
	assert.Equal(t, []any{map[string]any{"time": "08:30", "title": "NFP", "impact": "high"}}, out["econEvents"])
	assert.Equal(t, map[string]any{"nested": []any{map[string]any{"x": int32(1)}}}, out["prefs"])
	assert.Equal(t, when, out["seen"])
	assert.Equal(t, 3, out.EntryCount())
}

func TestUserDocumentDefaultsRole(t *testing.T) {
	doc := userDocument{ID: bson.NewObjectID(), Email: "A@B.co", EmailLower: "a@b.co"}
	user := doc.toDomain()
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, doc.ID.Hex(), user.ID)
	assert.NotNil(t, user.Data)
}
