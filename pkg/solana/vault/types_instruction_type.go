package vault

import (
	"github.com/code-payments/sol-vault/pkg/solana/binary"
)

type InstructionType uint8

const (
	// Unknown occupies the slot of the retired Initialize instruction. Vaults
	// are now created on first deposit.
	Unknown InstructionType = iota

	InstructionTypeDeposit
	InstructionTypeWithdraw
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeDeposit:
		return "deposit"
	case InstructionTypeWithdraw:
		return "withdraw"
	}
	return "unknown"
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	binary.PutUint8(dst[*offset:], uint8(v), offset)
}

func getInstructionType(src []byte, dst *InstructionType, offset *int) {
	var v uint8
	binary.GetUint8(src[*offset:], &v, offset)
	*dst = InstructionType(v)
}
