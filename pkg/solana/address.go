package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"filippo.io/edwards25519"
	jdgcs "github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrNoViableBump          = errors.New("no viable bump seed")

	ErrInvalidPublicKey = errors.New("invalid public key")
)

var programHashCtor = sha256.New

const pdaMarker = "ProgramDerivedAddress"

// CreateProgramAddress derives the address sha256(seeds || program || marker).
// A derived address must not have a private key, so a hash that decodes to a
// valid curve point is rejected with ErrInvalidPublicKey.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
	}

	h := programHashCtor()
	parts := append(append([][]byte{}, seeds...), program, []byte(pdaMarker))
	for _, part := range parts {
		if _, err := h.Write(part); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	var candidate [ed25519.PublicKeySize]byte
	copy(candidate[:], h.Sum(nil))
	if decodesToPoint(&candidate) {
		return nil, ErrInvalidPublicKey
	}
	return candidate[:], nil
}

// decodesToPoint applies the same point decoding ed25519.Verify performs on a
// public key.
func decodesToPoint(key *[ed25519.PublicKeySize]byte) bool {
	var point jdgcs.ExtendedGroupElement
	return point.FromBytes(key)
}

// FindProgramAddressAndBump searches bump seeds from 255 downwards and
// returns the first off-curve address with its bump. That bump is canonical.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := append(append([][]byte{}, seeds...), nil)
	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}

		address, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return address, uint8(bump), nil
		case ErrInvalidPublicKey:
			continue
		default:
			return nil, 0, err
		}
	}
	return nil, 0, ErrNoViableBump
}

// FindProgramAddress is FindProgramAddressAndBump without the bump
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}

// IsOnCurve reports whether the public key is a valid compressed ed25519 point,
// which is a prerequisite for a private key to exist for it.
func IsOnCurve(pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(pub)
	return err == nil
}

// MustBase58Decode decodes a base58 encoded key, panicking on malformed input.
// It is meant for package level constants.
func MustBase58Decode(value string) ed25519.PublicKey {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
