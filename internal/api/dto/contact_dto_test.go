package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRequestToleratesNonStringFields(t *testing.T) {
	var req ContactRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":42,"email":"a@b.co","message":{"x":1}}`), &req))

	assert.Equal(t, LooseString(""), req.Name)
	assert.Equal(t, LooseString("a@b.co"), req.Email)
	assert.Equal(t, LooseString(""), req.Message)
}
