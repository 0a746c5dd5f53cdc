package runtime

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/sol-vault/pkg/solana"
	"github.com/code-payments/sol-vault/pkg/solana/system"
)

// account is the mutable state shared by every AccountInfo view of the same
// key within an execution.
type account struct {
	lamports uint64
	owner    ed25519.PublicKey
	data     []byte
	borrowed bool
}

// AccountInfo is a program's view of an account during an invocation. Views
// of the same key share state, but privileges are per invocation.
type AccountInfo struct {
	Key        ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	state *account
}

// NewAccountInfo returns a standalone AccountInfo, which is useful when
// exercising a program outside of a Bank.
func NewAccountInfo(key ed25519.PublicKey, isSigner, isWritable bool, lamports uint64, owner ed25519.PublicKey, data []byte) *AccountInfo {
	return &AccountInfo{
		Key:        key,
		IsSigner:   isSigner,
		IsWritable: isWritable,
		state: &account{
			lamports: lamports,
			owner:    cloneBytes(owner),
			data:     cloneBytes(data),
		},
	}
}

func (a *AccountInfo) Lamports() uint64 {
	return a.state.lamports
}

// SetLamports updates the account's balance. Whether the change is permitted
// is decided when the invocation completes.
func (a *AccountInfo) SetLamports(lamports uint64) {
	a.state.lamports = lamports
}

func (a *AccountInfo) Owner() ed25519.PublicKey {
	return cloneBytes(a.state.owner)
}

func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.state.owner, program)
}

// Data returns a copy of the account data
func (a *AccountInfo) Data() []byte {
	return cloneBytes(a.state.data)
}

func (a *AccountInfo) DataLen() int {
	return len(a.state.data)
}

// IsSystemAccount reports whether the account holds no data and is owned by
// the system program, which is the state of any account never allocated.
func (a *AccountInfo) IsSystemAccount() bool {
	return len(a.state.data) == 0 && a.IsOwnedBy(system.SystemAccount)
}

// WithMutableData hands fn a scratch copy of the account data. The copy is
// written back only if fn returns nil. Nested borrows of the same account fail
// with AccountBorrowFailed.
func (a *AccountInfo) WithMutableData(fn func(data []byte) error) error {
	if a.state.borrowed {
		return solana.InstructionErrorAccountBorrowFailed
	}

	a.state.borrowed = true
	defer func() {
		a.state.borrowed = false
	}()

	scratch := cloneBytes(a.state.data)
	if err := fn(scratch); err != nil {
		return err
	}

	copy(a.state.data, scratch)
	return nil
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"AccountInfo{key=%s,signer=%v,writable=%v,lamports=%d,owner=%s,data_len=%d}",
		base58.Encode(a.Key),
		a.IsSigner,
		a.IsWritable,
		a.state.lamports,
		base58.Encode(a.state.owner),
		len(a.state.data),
	)
}

// accountState is an immutable copy of an account used to validate the
// changes an invocation made.
type accountState struct {
	lamports uint64
	owner    ed25519.PublicKey
	data     []byte
}

func (a *account) snapshot() accountState {
	return accountState{
		lamports: a.lamports,
		owner:    cloneBytes(a.owner),
		data:     cloneBytes(a.data),
	}
}

func (a *account) restore(s accountState) {
	a.lamports = s.lamports
	a.owner = cloneBytes(s.owner)
	a.data = cloneBytes(s.data)
}

func (s accountState) equals(a *account) bool {
	return s.lamports == a.lamports &&
		bytes.Equal(s.owner, a.owner) &&
		bytes.Equal(s.data, a.data) &&
		len(s.data) == len(a.data)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	cloned := make([]byte, len(b))
	copy(cloned, b)
	return cloned
}
