package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   EmbeddingStatus
		expected bool
	}{
		{name: "pending", status: EmbeddingStatusPending, expected: true},
		{name: "processing", status: EmbeddingStatusProcessing, expected: true},
		{name: "completed", status: EmbeddingStatusCompleted, expected: true},
		{name: "failed", status: EmbeddingStatusFailed, expected: true},
		{name: "empty string is invalid", status: EmbeddingStatus(""), expected: false},
		{name: "unknown status is invalid", status: EmbeddingStatus("done"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}

func TestEmbeddingStatus_IsTerminal(t *testing.T) {
	assert.False(t, EmbeddingStatusPending.IsTerminal())
	assert.False(t, EmbeddingStatusProcessing.IsTerminal())
	assert.True(t, EmbeddingStatusCompleted.IsTerminal())
	assert.True(t, EmbeddingStatusFailed.IsTerminal())
}

func TestParseEmbeddingStatus(t *testing.T) {
	status, err := ParseEmbeddingStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, EmbeddingStatusCompleted, status)

	_, err = ParseEmbeddingStatus("COMPLETED")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVector_RoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3, 0}
	data := EncodeVector(vec)
	assert.Len(t, data, 16)

	decoded, err := DecodeVector(data)
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)
}

func TestDecodeVector_Malformed(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		_, err := DecodeVector(data)
		assert.ErrorIs(t, err, ErrMalformedVector)
	}
}

func TestEncodeVector_Empty(t *testing.T) {
	assert.Nil(t, EncodeVector(nil))
}
