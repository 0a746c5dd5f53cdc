package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/sol-vault/pkg/solana"
)

var (
	PROGRAM_ADDRESS = solana.MustBase58Decode("SsLs4JcUzhftkoMSuTSsdNJazY6X8uV3KmEV56tmfpw")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(solana.MustBase58Decode("11111111111111111111111111111111"))
)
