package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRent_MinimumBalance(t *testing.T) {
	rent := DefaultRent()

	// Values match `solana rent <size>` on mainnet
	assert.EqualValues(t, 890880, rent.MinimumBalance(0))
	assert.EqualValues(t, 1176240, rent.MinimumBalance(41))
	assert.EqualValues(t, 2039280, rent.MinimumBalance(165))

	assert.True(t, rent.IsExempt(1176240, 41))
	assert.False(t, rent.IsExempt(1176239, 41))

	free := Rent{LamportsPerByteYear: 0, ExemptionThreshold: 2.0}
	assert.EqualValues(t, 0, free.MinimumBalance(41))
}
