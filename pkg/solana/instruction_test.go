package solana

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction_Accessors(t *testing.T) {
	program := bytes.Repeat([]byte{9}, ed25519.PublicKeySize)
	signer := bytes.Repeat([]byte{1}, ed25519.PublicKeySize)
	writable := bytes.Repeat([]byte{2}, ed25519.PublicKeySize)
	readonly := bytes.Repeat([]byte{3}, ed25519.PublicKeySize)

	ix := NewInstruction(
		program,
		[]byte{0xaa, 0xbb},
		NewAccountMeta(signer, true),
		NewAccountMeta(writable, false),
		NewReadonlyAccountMeta(readonly, false),
	)

	assert.Equal(t, [][]byte{signer, writable, readonly}, ix.AccountKeys())
	assert.Equal(t, []ed25519.PublicKey{signer}, ix.Signers())
	assert.False(t, ix.Accounts[2].IsWritable)

	message := ix.Message()
	require.Len(t, message, 32+3*33+2)
	assert.Equal(t, program, message[:32])
	assert.EqualValues(t, 3, message[32+32])
	assert.EqualValues(t, 2, message[32+33+32])
	assert.EqualValues(t, 0, message[32+2*33+32])
	assert.Equal(t, []byte{0xaa, 0xbb}, message[len(message)-2:])
}

func TestInstruction_MessageCoversPrivileges(t *testing.T) {
	key := bytes.Repeat([]byte{4}, ed25519.PublicKeySize)

	writable := NewInstruction(key, nil, NewAccountMeta(key, false))
	readonly := NewInstruction(key, nil, NewReadonlyAccountMeta(key, false))
	assert.NotEqual(t, writable.Message(), readonly.Message())
}
