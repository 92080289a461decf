package dtos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLookupResult(t *testing.T) {
	result := NewLookupResult([]int{1, 2, 3}, 123*time.Millisecond)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, "clickhouse", result.StorageSource)
	assert.InDelta(t, 0.123, result.TimeSeconds, 0.001)
}

func TestNewLookupResultNilData(t *testing.T) {
	result := NewLookupResult[string](nil, 0)
	assert.Equal(t, 0, result.Count)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"data":[]`)
}
