package vault

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/sol-vault/pkg/runtime"
	vault_program "github.com/code-payments/sol-vault/pkg/solana/vault"
)

// Processor is the vault program. Register it with a runtime.Bank under the
// vault program id.
type Processor struct {
	seed []byte
}

type ProcessorOption func(*Processor)

// WithSeed overrides the seed prefix vault addresses are derived with
func WithSeed(seed []byte) ProcessorOption {
	return func(p *Processor) {
		p.seed = seed
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		seed: vault_program.DefaultVaultSeed,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// instructionContext bundles the accounts and derivation inputs shared by
// every vault instruction.
type instructionContext struct {
	env       runtime.Environment
	log       *logrus.Entry
	programID ed25519.PublicKey

	caller        *runtime.AccountInfo
	vault         *runtime.AccountInfo
	systemProgram *runtime.AccountInfo

	addressArgs *vault_program.GetVaultAddressArgs
	bump        uint8
}

// Process implements runtime.Program
func (p *Processor) Process(env runtime.Environment, programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	args, err := vault_program.DecodeInstructionArgs(data)
	if err != nil {
		env.Log().WithError(err).Debug("invalid instruction data")
		return vault_program.ErrInvalidInstruction
	}

	if len(accounts) < 3 {
		return vault_program.ErrNotEnoughAccountKeys
	}

	ictx := &instructionContext{
		env:           env,
		programID:     programID,
		caller:        accounts[0],
		vault:         accounts[1],
		systemProgram: accounts[2],
		addressArgs: &vault_program.GetVaultAddressArgs{
			Program: programID,
			Seed:    p.seed,
			Owner:   accounts[0].Key,
		},
	}
	ictx.log = env.Log().WithFields(logrus.Fields{
		"instruction": args.InstructionType().String(),
		"caller":      base58.Encode(ictx.caller.Key),
		"vault":       base58.Encode(ictx.vault.Key),
	})

	switch typed := args.(type) {
	case *vault_program.DepositInstructionArgs:
		return deposit(ictx, typed.Amount)
	case *vault_program.WithdrawInstructionArgs:
		return withdraw(ictx)
	default:
		return vault_program.ErrInvalidInstruction
	}
}

// verifyVaultAddress re-derives the caller's vault address and records the
// canonical bump for signing.
func (c *instructionContext) verifyVaultAddress() error {
	expected, bump, err := vault_program.GetVaultAddress(c.addressArgs)
	if err != nil {
		c.log.WithError(err).Debug("failure deriving vault address")
		return vault_program.ErrAddressMismatch
	}

	if !c.vault.Key.Equal(expected) {
		c.log.Debugf("vault address mismatch, expected %s", base58.Encode(expected))
		return vault_program.ErrAddressMismatch
	}

	c.bump = bump
	return nil
}

func (c *instructionContext) signerSeeds() [][]byte {
	return vault_program.GetVaultSignerSeeds(c.addressArgs, c.bump)
}

func (c *instructionContext) cpiAccounts() []*runtime.AccountInfo {
	return []*runtime.AccountInfo{c.caller, c.vault, c.systemProgram}
}

// updateRecord runs fn against the stored record and persists the result
// only when fn succeeds.
func (c *instructionContext) updateRecord(fn func(record *vault_program.VaultAccount) error) error {
	if !c.vault.IsOwnedBy(c.programID) {
		return vault_program.ErrNotInitialized
	}

	return c.vault.WithMutableData(func(data []byte) error {
		var record vault_program.VaultAccount
		if err := record.Unmarshal(data); err != nil {
			c.log.WithError(err).Warn("stored vault record is corrupt")
			return vault_program.ErrInvalidAccountData
		}

		if !record.IsInitialized {
			return vault_program.ErrNotInitialized
		}
		if !record.IsOwnedBy(c.caller.Key) {
			return vault_program.ErrForbidden
		}

		if err := fn(&record); err != nil {
			return err
		}

		copy(data, record.Marshal())
		return nil
	})
}
