package vault

import (
	"github.com/code-payments/sol-vault/pkg/solana/system"
	vault_program "github.com/code-payments/sol-vault/pkg/solana/vault"
)

// isUncreated reports whether the vault has never been allocated. Only such
// a vault is ever created, so repeated deposits create it at most once.
func (c *instructionContext) isUncreated() bool {
	return c.vault.IsSystemAccount()
}

// createVault funds the vault to the rent exempt reserve, hands it to the
// program and writes an initialized record owned by the caller.
func (c *instructionContext) createVault() error {
	reserve := c.env.Rent().MinimumBalance(vault_program.VaultAccountSize)

	if c.vault.Lamports() == 0 {
		createAccount := system.CreateAccount(
			c.caller.Key,
			c.vault.Key,
			c.programID,
			reserve,
			vault_program.VaultAccountSize,
		)
		if err := c.env.InvokeSigned(createAccount, c.cpiAccounts(), c.signerSeeds()); err != nil {
			c.log.WithError(err).Debug("failure creating vault account")
			return err
		}
	} else {
		// Someone transferred lamports to the address before the first
		// deposit, so CreateAccount would fail with AccountAlreadyInUse.
		if err := c.adoptPrefundedVault(reserve); err != nil {
			return err
		}
	}

	err := c.vault.WithMutableData(func(data []byte) error {
		record := &vault_program.VaultAccount{
			IsInitialized: true,
			Owner:         c.caller.Key,
			Balance:       0,
		}
		copy(data, record.Marshal())
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info("vault account created and initialized")
	return nil
}

func (c *instructionContext) adoptPrefundedVault(reserve uint64) error {
	if balance := c.vault.Lamports(); balance < reserve {
		topUp := system.Transfer(c.caller.Key, c.vault.Key, reserve-balance)
		if err := c.env.InvokeSigned(topUp, c.cpiAccounts()); err != nil {
			c.log.WithError(err).Debug("failure topping up prefunded vault")
			return err
		}
	}

	allocate := system.Allocate(c.vault.Key, vault_program.VaultAccountSize)
	if err := c.env.InvokeSigned(allocate, c.cpiAccounts(), c.signerSeeds()); err != nil {
		c.log.WithError(err).Debug("failure allocating prefunded vault")
		return err
	}

	assign := system.Assign(c.vault.Key, c.programID)
	if err := c.env.InvokeSigned(assign, c.cpiAccounts(), c.signerSeeds()); err != nil {
		c.log.WithError(err).Debug("failure assigning prefunded vault")
		return err
	}

	return nil
}
