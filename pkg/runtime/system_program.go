package runtime

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/sol-vault/pkg/solana"
	"github.com/code-payments/sol-vault/pkg/solana/system"
)

// SystemProgram is the native implementation of the system program's
// CreateAccount, Assign, Transfer and Allocate instructions.
var SystemProgram Program = ProgramFunc(processSystemInstruction)

func processSystemInstruction(env Environment, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	ix := solana.Instruction{
		Program: programID,
		Data:    data,
	}

	command, err := system.GetCommand(ix)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	var required int
	switch command {
	case system.CommandCreateAccount, system.CommandTransfer:
		required = 2
	case system.CommandAssign, system.CommandAllocate:
		required = 1
	default:
		return solana.InstructionErrorInvalidInstructionData
	}

	if len(accounts) < required {
		return solana.InstructionErrorNotEnoughAccountKeys
	}
	accounts = accounts[:required]
	for _, account := range accounts {
		ix.Accounts = append(ix.Accounts, solana.AccountMeta{
			PublicKey:  account.Key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		})
	}

	log := env.Log().WithField("command", command)

	switch command {
	case system.CommandCreateAccount:
		decompiled, err := system.DecompileCreateAccount(ix)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return createAccount(log, accounts[0], accounts[1], decompiled.Lamports, decompiled.Size, decompiled.Owner)
	case system.CommandTransfer:
		decompiled, err := system.DecompileTransfer(ix)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return transfer(log, accounts[0], accounts[1], decompiled.Lamports)
	case system.CommandAllocate:
		decompiled, err := system.DecompileAllocate(ix)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return allocate(log, accounts[0], decompiled.Size)
	default:
		decompiled, err := system.DecompileAssign(ix)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return assign(log, accounts[0], decompiled.Owner)
	}
}

func createAccount(log *logrus.Entry, from, to *AccountInfo, lamports, size uint64, owner ed25519.PublicKey) error {
	if !to.IsSigner {
		log.Debugf("create account: 'to' %s must sign", base58.Encode(to.Key))
		return solana.InstructionErrorMissingRequiredSignature
	}

	if to.state.lamports > 0 {
		log.Debugf("create account: %s already in use", base58.Encode(to.Key))
		return system.ErrAccountAlreadyInUse
	}

	if err := allocateAndAssign(log, to, size, owner); err != nil {
		return err
	}

	return transfer(log, from, to, lamports)
}

func allocateAndAssign(log *logrus.Entry, account *AccountInfo, size uint64, owner ed25519.PublicKey) error {
	if err := allocate(log, account, size); err != nil {
		return err
	}
	return assign(log, account, owner)
}

func allocate(log *logrus.Entry, account *AccountInfo, size uint64) error {
	if !account.IsSigner {
		log.Debugf("allocate: %s must sign", base58.Encode(account.Key))
		return solana.InstructionErrorMissingRequiredSignature
	}

	if !account.IsSystemAccount() {
		log.Debugf("allocate: %s already in use", base58.Encode(account.Key))
		return system.ErrAccountAlreadyInUse
	}

	if size > system.MaxPermittedDataLength {
		log.Debugf("allocate: requested %d, max allowed %d", size, system.MaxPermittedDataLength)
		return system.ErrInvalidAccountDataLength
	}

	account.state.data = make([]byte, size)
	return nil
}

func assign(log *logrus.Entry, account *AccountInfo, owner ed25519.PublicKey) error {
	if account.IsOwnedBy(owner) {
		return nil
	}

	if !account.IsSigner {
		log.Debugf("assign: %s must sign", base58.Encode(account.Key))
		return solana.InstructionErrorMissingRequiredSignature
	}

	account.state.owner = cloneBytes(owner)
	return nil
}

func transfer(log *logrus.Entry, from, to *AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		log.Debugf("transfer: 'from' %s must sign", base58.Encode(from.Key))
		return solana.InstructionErrorMissingRequiredSignature
	}

	if from.DataLen() > 0 {
		log.Debug("transfer: 'from' must not carry data")
		return solana.InstructionErrorInvalidArgument
	}

	if lamports > from.state.lamports {
		log.Debugf("transfer: insufficient lamports %d, need %d", from.state.lamports, lamports)
		return system.ErrResultWithNegativeLamports
	}

	from.state.lamports -= lamports
	if to.state.lamports+lamports < to.state.lamports {
		from.state.lamports += lamports
		return solana.InstructionErrorArithmeticOverflow
	}
	to.state.lamports += lamports

	return nil
}
