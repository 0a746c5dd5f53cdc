package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/sol-vault/pkg/solana"
)

// DefaultVaultSeed is the seed prefix deployed vault programs derive vault
// addresses with.
var DefaultVaultSeed = []byte("sol_account")

type GetVaultAddressArgs struct {
	Program ed25519.PublicKey
	Seed    []byte
	Owner   ed25519.PublicKey
}

// GetVaultAddress derives the vault address and canonical bump for an owner.
// The result is a pure function of the args.
func GetVaultAddress(args *GetVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		args.Seed,
		args.Owner,
	)
}

// GetVaultSignerSeeds returns the seeds a program signs for the vault with.
func GetVaultSignerSeeds(args *GetVaultAddressArgs, bump uint8) [][]byte {
	return [][]byte{
		args.Seed,
		args.Owner,
		{bump},
	}
}
