package vault

import (
	"github.com/mr-tron/base58"

	"github.com/code-payments/sol-vault/pkg/config"
	"github.com/code-payments/sol-vault/pkg/config/env"
	"github.com/code-payments/sol-vault/pkg/config/memory"
	"github.com/code-payments/sol-vault/pkg/config/wrapper"
	vault_program "github.com/code-payments/sol-vault/pkg/solana/vault"
)

const (
	envConfigPrefix = "VAULT_CLIENT_"

	ProgramIdConfigEnvName = envConfigPrefix + "PROGRAM_ID"

	SeedConfigEnvName = envConfigPrefix + "SEED"

	AddressCacheBudgetConfigEnvName = envConfigPrefix + "ADDRESS_CACHE_BUDGET"
	defaultAddressCacheBudget       = 10_000

	// Zero disables the limit
	WithdrawalsPerSecondConfigEnvName = envConfigPrefix + "WITHDRAWALS_PER_SECOND"
	defaultWithdrawalsPerSecond       = 0
)

var (
	defaultProgramId = base58.Encode(vault_program.PROGRAM_ID)
	defaultSeed      = string(vault_program.DefaultVaultSeed)
)

type conf struct {
	programId            config.String
	seed                 config.String
	addressCacheBudget   config.Uint64
	withdrawalsPerSecond config.Float64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			programId:            env.NewStringConfig(ProgramIdConfigEnvName, defaultProgramId),
			seed:                 env.NewStringConfig(SeedConfigEnvName, defaultSeed),
			addressCacheBudget:   env.NewUint64Config(AddressCacheBudgetConfigEnvName, defaultAddressCacheBudget),
			withdrawalsPerSecond: env.NewFloat64Config(WithdrawalsPerSecondConfigEnvName, defaultWithdrawalsPerSecond),
		}
	}
}

type testOverrides struct {
	programId            string
	seed                 string
	withdrawalsPerSecond float64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			programId:            wrapper.NewStringConfig(memory.NewConfig(overrides.programId), defaultProgramId),
			seed:                 wrapper.NewStringConfig(memory.NewConfig(overrides.seed), defaultSeed),
			addressCacheBudget:   wrapper.NewUint64Config(memory.NewConfig(uint64(16)), defaultAddressCacheBudget),
			withdrawalsPerSecond: wrapper.NewFloat64Config(memory.NewConfig(overrides.withdrawalsPerSecond), defaultWithdrawalsPerSecond),
		}
	}
}
