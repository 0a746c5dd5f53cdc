// Package env sources config values from environment variables.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/sol-vault/pkg/config"
	"github.com/code-payments/sol-vault/pkg/config/wrapper"
)

type conf struct {
	val string
}

// NewConfig snapshots the environment variable named by the upper cased key.
// An empty variable is treated as unset.
func NewConfig(key string) config.Config {
	return &conf{val: os.Getenv(strings.ToUpper(key))}
}

func (c *conf) Get(_ context.Context) (interface{}, error) {
	if c.val == "" {
		return nil, config.ErrNoValue
	}
	return []byte(c.val), nil
}

func (c *conf) Shutdown() {}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewFloat64Config(key string, defaultValue float64) config.Float64 {
	return wrapper.NewFloat64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
