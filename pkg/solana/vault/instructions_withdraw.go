package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/sol-vault/pkg/solana"
)

type WithdrawInstructionArgs struct {
}

type WithdrawInstructionAccounts struct {
	Caller ed25519.PublicKey
	Vault  ed25519.PublicKey
}

func (*WithdrawInstructionArgs) InstructionType() InstructionType {
	return InstructionTypeWithdraw
}

func NewWithdrawInstruction(
	program ed25519.PublicKey,
	accounts *WithdrawInstructionAccounts,
	args *WithdrawInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putInstructionType(data, InstructionTypeWithdraw, &offset)

	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Caller,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
