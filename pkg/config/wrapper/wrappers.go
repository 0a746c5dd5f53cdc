// Package wrapper converts untyped config.Config values into typed configs
// with defaults.
package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/sol-vault/pkg/config"
)

// ErrUnsupportedConversion indicates the source produced a value of a type the
// wrapper cannot convert
var ErrUnsupportedConversion = errors.New("config: wrapper conversion from source type not implemented")

type converter[T any] func(raw interface{}) (T, error)

type typedConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      converter[T]

	mu        sync.RWMutex
	lastValue T
}

func newTypedConfig[T any](override config.Config, defaultValue T, convert converter[T]) *typedConfig[T] {
	return &typedConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe returns the override converted to T, or the default when no override
// is set. On failure the last successfully observed value is returned along
// with the error.
func (c *typedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.override.Get(ctx)
	if errors.Is(err, config.ErrNoValue) {
		c.setLast(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return c.last(), err
	}

	value, err := c.convert(raw)
	if err != nil {
		return c.last(), err
	}

	c.setLast(value)
	return value, nil
}

func (c *typedConfig[T]) Get(ctx context.Context) T {
	value, _ := c.GetSafe(ctx)
	return value
}

func (c *typedConfig[T]) Shutdown() {
	c.override.Shutdown()
}

func (c *typedConfig[T]) last() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastValue
}

func (c *typedConfig[T]) setLast(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastValue = value
}

// NewUint64Config accepts []byte (base 10), uint64 and uint overrides
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (uint64, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseUint(string(v), 10, 64)
		case uint64:
			return v, nil
		case uint:
			return uint64(v), nil
		default:
			return 0, ErrUnsupportedConversion
		}
	})
}

// NewFloat64Config accepts []byte and float64 overrides
func NewFloat64Config(override config.Config, defaultValue float64) config.Float64 {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (float64, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseFloat(string(v), 64)
		case float64:
			return v, nil
		default:
			return 0, ErrUnsupportedConversion
		}
	})
}

// NewStringConfig accepts []byte and string overrides
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (string, error) {
		switch v := raw.(type) {
		case []byte:
			return string(v), nil
		case string:
			return v, nil
		default:
			return "", ErrUnsupportedConversion
		}
	})
}

// NewDurationConfig accepts []byte in time.ParseDuration form and
// time.Duration overrides
func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (time.Duration, error) {
		switch v := raw.(type) {
		case []byte:
			return time.ParseDuration(string(v))
		case time.Duration:
			return v, nil
		default:
			return 0, ErrUnsupportedConversion
		}
	})
}
