package vault

import (
	"math/bits"

	"github.com/code-payments/sol-vault/pkg/solana/system"
	vault_program "github.com/code-payments/sol-vault/pkg/solana/vault"
)

// deposit moves amount lamports from the caller into their vault and credits
// the stored balance, creating the vault on first use.
func deposit(c *instructionContext, amount uint64) error {
	log := c.log.WithField("amount", amount)

	if !c.caller.IsSigner {
		return vault_program.ErrUnauthorized
	}

	if c.caller.Lamports() < amount {
		log.Debugf("caller holds %d lamports", c.caller.Lamports())
		return vault_program.ErrInsufficientFunds
	}

	if err := c.verifyVaultAddress(); err != nil {
		return err
	}

	if c.isUncreated() {
		if err := c.createVault(); err != nil {
			return err
		}
	}

	transfer := system.Transfer(c.caller.Key, c.vault.Key, amount)
	if err := c.env.InvokeSigned(transfer, c.cpiAccounts(), c.signerSeeds()); err != nil {
		log.WithError(err).Debug("failure transferring deposit")
		return err
	}

	return c.updateRecord(func(record *vault_program.VaultAccount) error {
		balance, carry := bits.Add64(record.Balance, amount, 0)
		if carry != 0 {
			return vault_program.ErrOverflow
		}
		record.Balance = balance

		log.Debugf("vault balance is now %d", balance)
		return nil
	})
}
