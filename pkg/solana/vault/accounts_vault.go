package vault

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/sol-vault/pkg/solana/binary"
)

const (
	VaultAccountSize = (1 + // is_initialized
		32 + // owner
		8) // balance
)

type VaultAccount struct {
	IsInitialized bool
	Owner         ed25519.PublicKey
	Balance       uint64
}

func (obj *VaultAccount) Marshal() []byte {
	var offset int

	data := make([]byte, VaultAccountSize)

	owner := obj.Owner
	if len(owner) == 0 {
		owner = make([]byte, ed25519.PublicKeySize)
	}

	binary.PutBool(data[offset:], obj.IsInitialized, &offset)
	binary.PutKey32(data[offset:], owner, &offset)
	binary.PutUint64(data[offset:], obj.Balance, &offset)

	return data
}

// Unmarshal decodes the leading VaultAccountSize bytes of data. Trailing
// bytes are ignored.
func (obj *VaultAccount) Unmarshal(data []byte) error {
	if len(data) < VaultAccountSize {
		return ErrTruncatedAccount
	}

	var offset int

	if ok := binary.GetBool(data[offset:], &obj.IsInitialized, &offset); !ok {
		return ErrMalformedAccount
	}
	binary.GetKey32(data[offset:], &obj.Owner, &offset)
	binary.GetUint64(data[offset:], &obj.Balance, &offset)

	return nil
}

// IsOwnedBy reports whether the record's owner is the given key.
func (obj *VaultAccount) IsOwnedBy(owner ed25519.PublicKey) bool {
	return bytes.Equal(obj.Owner, owner)
}

func (obj *VaultAccount) Clone() VaultAccount {
	owner := make(ed25519.PublicKey, len(obj.Owner))
	copy(owner, obj.Owner)

	return VaultAccount{
		IsInitialized: obj.IsInitialized,
		Owner:         owner,
		Balance:       obj.Balance,
	}
}

func (obj *VaultAccount) String() string {
	return fmt.Sprintf(
		"VaultAccount{is_initialized=%v,owner=%s,balance=%d}",
		obj.IsInitialized,
		base58.Encode(obj.Owner),
		obj.Balance,
	)
}
