package runtime

import (
	"time"

	"github.com/code-payments/sol-vault/pkg/config"
	"github.com/code-payments/sol-vault/pkg/config/env"
	"github.com/code-payments/sol-vault/pkg/solana/system"
)

const (
	envConfigPrefix = "RUNTIME_"

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	LamportsPerByteYearConfigEnvName = envConfigPrefix + "LAMPORTS_PER_BYTE_YEAR"
	defaultLamportsPerByteYear       = system.DefaultLamportsPerByteYear

	ExemptionThresholdConfigEnvName = envConfigPrefix + "EXEMPTION_THRESHOLD"
	defaultExemptionThreshold       = system.DefaultExemptionThreshold

	CommitAttemptsConfigEnvName = envConfigPrefix + "COMMIT_ATTEMPTS"
	defaultCommitAttempts       = 5

	CommitBackoffConfigEnvName = envConfigPrefix + "COMMIT_BACKOFF"
	defaultCommitBackoff       = 25 * time.Millisecond
)

type conf struct {
	lockStripes         config.Uint64
	lamportsPerByteYear config.Uint64
	exemptionThreshold  config.Float64
	commitAttempts      config.Uint64
	commitBackoff       config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lockStripes:         env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			lamportsPerByteYear: env.NewUint64Config(LamportsPerByteYearConfigEnvName, defaultLamportsPerByteYear),
			exemptionThreshold:  env.NewFloat64Config(ExemptionThresholdConfigEnvName, defaultExemptionThreshold),
			commitAttempts:      env.NewUint64Config(CommitAttemptsConfigEnvName, defaultCommitAttempts),
			commitBackoff:       env.NewDurationConfig(CommitBackoffConfigEnvName, defaultCommitBackoff),
		}
	}
}
