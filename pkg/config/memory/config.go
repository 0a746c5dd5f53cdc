// Package memory provides a mutable config.Config for tests and manual
// overrides.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/code-payments/sol-vault/pkg/config"
)

// ErrInduced is a stand-in failure for exercising config error handling
var ErrInduced = errors.New("memory config: induced error")

type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a config holding value. A nil value behaves as unset.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	default:
		return c.value, nil
	}
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = true
}

// SetValue replaces the value returned by Get
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// ClearValue makes Get return config.ErrNoValue
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// SetError makes Get fail with err until it is reset with a nil error
func (c *Config) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}
