package solana

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKeyedError struct{}

func (testKeyedError) Error() string {
	return "keyed"
}

func (testKeyedError) InstructionErrorKey() InstructionErrorKey {
	return InstructionErrorIllegalOwner
}

func TestInstructionError_ErrorKey(t *testing.T) {
	for _, tc := range []struct {
		err      error
		expected InstructionErrorKey
	}{
		{nil, ""},
		{CustomError(3), InstructionErrorCustom},
		{InstructionErrorInvalidArgument, InstructionErrorInvalidArgument},
		{testKeyedError{}, InstructionErrorIllegalOwner},
		{errors.Wrap(testKeyedError{}, "context"), InstructionErrorIllegalOwner},
		{errors.New("GenericError"), InstructionErrorGenericError},
	} {
		e := InstructionError{Index: 1, Err: tc.err}
		assert.Equal(t, tc.expected, e.ErrorKey())
	}
}

func TestInstructionError_Unwrap(t *testing.T) {
	var err error = InstructionError{Index: 0, Err: testKeyedError{}}

	var keyed KeyedError
	require.True(t, errors.As(err, &keyed))
	assert.Equal(t, InstructionErrorIllegalOwner, keyed.InstructionErrorKey())

	err = InstructionError{Index: 0, Err: InstructionErrorInsufficientFunds}
	assert.True(t, errors.Is(err, InstructionErrorInsufficientFunds))
	assert.False(t, errors.Is(err, InstructionErrorInvalidArgument))
}

func TestInstructionError_JSONString(t *testing.T) {
	var raw interface{}

	e := InstructionError{Index: 2, Err: CustomError(3)}
	require.NoError(t, json.Unmarshal([]byte(e.JSONString()), &raw))
	assert.Equal(t, []interface{}{float64(2), map[string]interface{}{"Custom": float64(3)}}, raw)
	require.NotNil(t, e.CustomError())
	assert.Equal(t, CustomError(3), *e.CustomError())

	e = InstructionError{Index: 0, Err: testKeyedError{}}
	require.NoError(t, json.Unmarshal([]byte(e.JSONString()), &raw))
	assert.Equal(t, []interface{}{float64(0), "IllegalOwner"}, raw)
	assert.Nil(t, e.CustomError())
}
