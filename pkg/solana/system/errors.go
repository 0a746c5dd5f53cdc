package system

import (
	"github.com/code-payments/sol-vault/pkg/solana"
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L21
const (
	ErrAccountAlreadyInUse        = solana.CustomError(0)
	ErrResultWithNegativeLamports = solana.CustomError(1)
	ErrInvalidAccountDataLength   = solana.CustomError(3)
)

// MaxPermittedDataLength is the largest account the system program allocates
const MaxPermittedDataLength = 10 * 1024 * 1024
