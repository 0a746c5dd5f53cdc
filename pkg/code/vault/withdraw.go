package vault

import (
	"math/bits"

	vault_program "github.com/code-payments/sol-vault/pkg/solana/vault"
)

const (
	// WithdrawalDivisor bounds each withdrawal to a fraction of the balance
	WithdrawalDivisor = 10
)

// GetWithdrawalAmount returns the payout a withdrawal against balance yields
func GetWithdrawalAmount(balance uint64) uint64 {
	return balance / WithdrawalDivisor
}

// withdraw pays out a tenth of the stored balance from the vault back to the
// caller.
func withdraw(c *instructionContext) error {
	if !c.caller.IsSigner {
		return vault_program.ErrUnauthorized
	}

	if err := c.verifyVaultAddress(); err != nil {
		return err
	}

	return c.updateRecord(func(record *vault_program.VaultAccount) error {
		amount := GetWithdrawalAmount(record.Balance)
		log := c.log.WithField("amount", amount)

		if c.vault.Lamports() < amount {
			log.Warnf("vault holds %d lamports", c.vault.Lamports())
			return vault_program.ErrInsufficientFunds
		}

		balance, borrow := bits.Sub64(record.Balance, amount, 0)
		if borrow != 0 {
			return vault_program.ErrUnderflow
		}

		credited, carry := bits.Add64(c.caller.Lamports(), amount, 0)
		if carry != 0 {
			return vault_program.ErrOverflow
		}

		record.Balance = balance
		c.vault.SetLamports(c.vault.Lamports() - amount)
		c.caller.SetLamports(credited)

		log.Debugf("vault balance is now %d", record.Balance)
		return nil
	})
}
