package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNoLimiter(t *testing.T) {
	l := &NoLimiter{}
	for i := 0; i < 10000; i++ {
		assert.True(t, l.Allow(""))
	}
}

func TestLocalRateLimiter(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(2), 16)

	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.False(t, l.Allow("a"))

	// Keys are limited independently
	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("b"))
	}
	assert.False(t, l.Allow("b"))
}

func TestLocalRateLimiter_FractionalRate(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(0.01), 16)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestLocalRateLimiter_Capacity(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(0.01), 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))

	// "b" is now the least recently seen key
	assert.True(t, l.Allow("c"))
	assert.False(t, l.Allow("a"))
	assert.False(t, l.Allow("c"))

	assert.EqualValues(t, 2, l.(*localRateLimiter).limiters.GetWeight())

	// Dropped keys start over
	assert.True(t, l.Allow("b"))
}
