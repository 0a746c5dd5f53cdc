package wrapper

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/sol-vault/pkg/config"
	"github.com/code-payments/sol-vault/pkg/config/memory"
)

type typedTestCase[T any] struct {
	defaultValue T
	override     T
	encoded      []byte
	decoded      T
	unsupported  interface{}
}

func runTypedConfigTest[T any](t *testing.T, tc typedTestCase[T], newConfig func(config.Config, T) config.Typed[T]) {
	ctx := context.Background()

	mock := memory.NewConfig(nil)
	c := newConfig(mock, tc.defaultValue)

	val, err := c.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.defaultValue, val)

	mock.SetValue(tc.override)
	val, err = c.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.override, val)

	// Source failures fall back to the last good value
	mock.SetError(memory.ErrInduced)
	val, err = c.GetSafe(ctx)
	assert.Equal(t, memory.ErrInduced, err)
	assert.Equal(t, tc.override, val)
	assert.Equal(t, tc.override, c.Get(ctx))
	mock.SetError(nil)

	mock.SetValue(tc.encoded)
	val, err = c.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.decoded, val)

	mock.SetValue(tc.unsupported)
	val, err = c.GetSafe(ctx)
	assert.Equal(t, ErrUnsupportedConversion, err)
	assert.Equal(t, tc.decoded, val)

	mock.ClearValue()
	assert.Equal(t, tc.defaultValue, c.Get(ctx))

	c.Shutdown()
	_, err = c.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestUint64Config(t *testing.T) {
	runTypedConfigTest(t, typedTestCase[uint64]{
		defaultValue: math.MaxUint64,
		override:     0,
		encoded:      []byte("10000"),
		decoded:      10000,
		unsupported:  "not supported",
	}, NewUint64Config)
}

func TestUint64Config_Uint(t *testing.T) {
	mock := memory.NewConfig(uint(42))
	assert.EqualValues(t, 42, NewUint64Config(mock, 1).Get(context.Background()))
}

func TestFloat64Config(t *testing.T) {
	runTypedConfigTest(t, typedTestCase[float64]{
		defaultValue: 1.5,
		override:     -0.25,
		encoded:      []byte("42.125"),
		decoded:      42.125,
		unsupported:  uint64(1),
	}, NewFloat64Config)
}

func TestStringConfig(t *testing.T) {
	runTypedConfigTest(t, typedTestCase[string]{
		defaultValue: "sol_account",
		override:     "custom_seed",
		encoded:      []byte("from_bytes"),
		decoded:      "from_bytes",
		unsupported:  1234,
	}, NewStringConfig)
}

func TestDurationConfig(t *testing.T) {
	runTypedConfigTest(t, typedTestCase[time.Duration]{
		defaultValue: 30 * time.Second,
		override:     -2 * time.Hour,
		encoded:      []byte("150ms"),
		decoded:      150 * time.Millisecond,
		unsupported:  "not supported",
	}, NewDurationConfig)
}

func TestInvalidEncodingKeepsLastValue(t *testing.T) {
	ctx := context.Background()

	mock := memory.NewConfig(uint64(7))
	c := NewUint64Config(mock, 1)
	assert.EqualValues(t, 7, c.Get(ctx))

	mock.SetValue([]byte("cannot convert"))
	val, err := c.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 7, val)
}
