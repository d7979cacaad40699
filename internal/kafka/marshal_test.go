package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	OrderID string `json:"order_id"`
	Count   int    `json:"count"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := MustMarshal(samplePayload{OrderID: "20260101120000000000007", Count: 3})

	got, err := UnwrapPayload[samplePayload](json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "20260101120000000000007", got.OrderID)
	assert.Equal(t, 3, got.Count)
}

func TestUnwrapPayload_Invalid(t *testing.T) {
	_, err := UnwrapPayload[samplePayload](json.RawMessage(`{"count":"three"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload")
}

func TestMustMarshal_PanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}
