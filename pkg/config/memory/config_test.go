package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/sol-vault/pkg/config"
)

func TestConfig_Lifecycle(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue(uint64(42))
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, val)

	c.SetError(ErrInduced)
	_, err = c.Get(ctx)
	assert.Equal(t, ErrInduced, err)

	c.SetError(nil)
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, val)

	c.ClearValue()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue("sol_account")
	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestConfig_InitialValue(t *testing.T) {
	val, err := NewConfig([]byte("seed")).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("seed"), val)
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	c := NewConfig(uint64(0))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.SetValue(uint64(i))
			_, err := c.Get(context.Background())
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
