package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.46, Round2(10.456))
	assert.Equal(t, 10.45, Round2(10.4549))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 100.0, Round2(99.999))
}

func TestTotal(t *testing.T) {
	// 500kg of wheat bid at 26.50/kg
	assert.Equal(t, 13250.0, Total(500, 26.50))
	// 75kg of tomatoes at 18/kg
	assert.Equal(t, 1350.0, Total(75, 18))
	assert.Equal(t, 0.0, Total(0, 26.50))
}

func TestCommission(t *testing.T) {
	assert.Equal(t, 662.5, Commission(13250, 0.05))
	assert.Equal(t, 67.5, Commission(1350, 0.05))
	// rounding on awkward totals
	assert.Equal(t, 5.0, Commission(99.99, 0.05))
}

func TestReferencePrice(t *testing.T) {
	wheat, ok := ReferencePrice("wheat")
	assert.True(t, ok)
	assert.Greater(t, wheat, 0.0)

	_, ok = ReferencePrice("dragonfruit")
	assert.False(t, ok)
}
