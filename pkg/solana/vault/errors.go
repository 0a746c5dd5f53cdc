package vault

import (
	"github.com/pkg/errors"

	"github.com/code-payments/sol-vault/pkg/solana"
)

var (
	ErrTruncatedAccount = errors.New("vault account data is truncated")
	ErrMalformedAccount = errors.New("vault account data is malformed")
)

// VaultError is the custom error code returned by the vault program.
type VaultError uint32

const (
	// Caller did not sign the transaction
	ErrUnauthorized VaultError = iota + 0x1770

	// Vault account does not match the derived address for the caller
	ErrAddressMismatch

	// Caller or vault lacks the lamports required
	ErrInsufficientFunds

	// Vault has not been created
	ErrNotInitialized

	// Caller is not the vault owner
	ErrForbidden

	// Balance addition would wrap
	ErrOverflow

	// Balance subtraction would wrap
	ErrUnderflow

	// Instruction data could not be decoded
	ErrInvalidInstruction

	// Stored vault record could not be decoded
	ErrInvalidAccountData

	// Fewer accounts than the instruction requires
	ErrNotEnoughAccountKeys
)

func (e VaultError) Error() string {
	switch e {
	case ErrUnauthorized:
		return "vault: caller is not a signer"
	case ErrAddressMismatch:
		return "vault: account does not match derived address"
	case ErrInsufficientFunds:
		return "vault: insufficient funds"
	case ErrNotInitialized:
		return "vault: not initialized"
	case ErrForbidden:
		return "vault: caller is not the owner"
	case ErrOverflow:
		return "vault: balance overflow"
	case ErrUnderflow:
		return "vault: balance underflow"
	case ErrInvalidInstruction:
		return "vault: invalid instruction"
	case ErrInvalidAccountData:
		return "vault: invalid account data"
	case ErrNotEnoughAccountKeys:
		return "vault: not enough account keys"
	}
	return solana.CustomError(e).Error()
}

// InstructionErrorKey maps the error onto the native error the program
// historically reported for the same condition.
func (e VaultError) InstructionErrorKey() solana.InstructionErrorKey {
	switch e {
	case ErrUnauthorized:
		return solana.InstructionErrorMissingRequiredSignature
	case ErrAddressMismatch:
		return solana.InstructionErrorInvalidArgument
	case ErrInsufficientFunds:
		return solana.InstructionErrorInsufficientFunds
	case ErrNotInitialized:
		return solana.InstructionErrorUninitializedAccount
	case ErrForbidden:
		return solana.InstructionErrorIllegalOwner
	case ErrOverflow, ErrUnderflow:
		return solana.InstructionErrorArithmeticOverflow
	case ErrInvalidInstruction:
		return solana.InstructionErrorInvalidInstructionData
	case ErrInvalidAccountData:
		return solana.InstructionErrorInvalidAccountData
	case ErrNotEnoughAccountKeys:
		return solana.InstructionErrorNotEnoughAccountKeys
	}
	return solana.InstructionErrorCustom
}

// GetVaultError extracts the VaultError from err, which may be wrapped.
func GetVaultError(err error) (VaultError, bool) {
	var vaultErr VaultError
	if errors.As(err, &vaultErr) {
		return vaultErr, true
	}
	return 0, false
}
