package testutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/sol-vault/pkg/solana"
)

// AssertInstructionErrorWithKey verifies that the provided error is an
// instruction error carrying the provided native error key.
func AssertInstructionErrorWithKey(t *testing.T, err error, key solana.InstructionErrorKey) {
	require.Error(t, err)

	var instructionErr solana.InstructionError
	require.True(t, errors.As(err, &instructionErr), "not an instruction error: %v", err)
	assert.Equal(t, key, instructionErr.ErrorKey())
}
