package vault

import (
	"github.com/code-payments/sol-vault/pkg/solana/binary"
)

// InstructionArgs is the decoded form of a vault instruction. It is one of
// *DepositInstructionArgs or *WithdrawInstructionArgs.
type InstructionArgs interface {
	InstructionType() InstructionType
}

// DecodeInstructionArgs decodes raw instruction data. Any unknown tag, short
// payload or trailing byte results in ErrInvalidInstruction.
func DecodeInstructionArgs(data []byte) (InstructionArgs, error) {
	if len(data) == 0 {
		return nil, ErrInvalidInstruction
	}

	var offset int
	var instructionType InstructionType
	getInstructionType(data, &instructionType, &offset)

	switch instructionType {
	case InstructionTypeDeposit:
		if len(data) != 1+DepositInstructionArgsSize {
			return nil, ErrInvalidInstruction
		}

		var args DepositInstructionArgs
		binary.GetUint64(data[offset:], &args.Amount, &offset)
		return &args, nil
	case InstructionTypeWithdraw:
		if len(data) != 1 {
			return nil, ErrInvalidInstruction
		}
		return &WithdrawInstructionArgs{}, nil
	default:
		return nil, ErrInvalidInstruction
	}
}
