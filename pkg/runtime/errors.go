package runtime

import (
	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound             = errors.New("account not found")
	ErrMissingSignature            = errors.New("missing signature for signer account")
	ErrInvalidSigner               = errors.New("signer is not a valid ed25519 public key")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	ErrLamportsOverflow            = errors.New("account lamports overflow")
)
