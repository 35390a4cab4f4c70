package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBelowMinimum(t *testing.T) {
	const minKg = 50.0

	// 80kg lot: a 50kg order is fine, a 30kg order is not
	assert.False(t, belowMinimum(50, 80, minKg))
	assert.True(t, belowMinimum(30, 80, minKg))

	// 30kg remainder left by the first order: buying the whole
	// remainder is exempt from the minimum, buying part of it is not
	assert.False(t, belowMinimum(30, 30, minKg))
	assert.True(t, belowMinimum(20, 30, minKg))

	// exactly the minimum from a lot of exactly the minimum
	assert.False(t, belowMinimum(50, 50, minKg))
}
