package runtime

import (
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/sol-vault/pkg/solana"
	"github.com/code-payments/sol-vault/pkg/solana/system"
)

// Environment is the host surface available to an executing program
type Environment interface {
	// Rent returns the rent parameters in effect
	Rent() system.Rent

	// Log returns a log entry scoped to the executing program
	Log() *logrus.Entry

	// InvokeSigned executes ix as a cross-program invocation. Every account
	// referenced by ix must be present in accounts. Each set of signerSeeds
	// authorizes the program address derived from it under the invoking
	// program's id.
	InvokeSigned(ix solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// Program is an on-chain program the host can execute
type Program interface {
	Process(env Environment, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface
type ProgramFunc func(env Environment, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error

func (f ProgramFunc) Process(env Environment, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(env, programID, accounts, data)
}
