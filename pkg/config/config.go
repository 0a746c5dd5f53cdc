package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of a single, untyped configuration value
type Config interface {
	// Get returns the latest value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown releases any resources held by the source
	Shutdown()
}

// Typed is a Config whose value has been converted to T. Get never fails and
// falls back to the last good value; GetSafe reports the failure.
type Typed[T any] interface {
	Get(ctx context.Context) T
	GetSafe(ctx context.Context) (T, error)
	Shutdown()
}

type (
	Uint64   = Typed[uint64]
	Float64  = Typed[float64]
	String   = Typed[string]
	Duration = Typed[time.Duration]
)
