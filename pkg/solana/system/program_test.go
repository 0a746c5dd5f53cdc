package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/sol-vault/pkg/solana"
)

func TestCreateAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	command := make([]byte, 4)
	lamports := make([]byte, 8)
	binary.LittleEndian.PutUint64(lamports, 12345)
	size := make([]byte, 8)
	binary.LittleEndian.PutUint64(size, 67890)

	assert.Equal(t, command, instruction.Data[0:4])
	assert.Equal(t, lamports, instruction.Data[4:12])
	assert.Equal(t, size, instruction.Data[12:20])
	assert.Equal(t, []byte(keys[2]), instruction.Data[20:52])

	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[1].IsSigner)

	decompiled, err := DecompileCreateAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, decompiled.Funder, keys[0])
	assert.Equal(t, decompiled.Address, keys[1])
	assert.Equal(t, decompiled.Owner, keys[2])
	assert.EqualValues(t, decompiled.Lamports, 12345)
	assert.EqualValues(t, decompiled.Size, 67890)
}

func TestDecompileNonCreate(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	instruction.Accounts = instruction.Accounts[:1]
	_, err := DecompileCreateAccount(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	binary.LittleEndian.PutUint32(instruction.Data, uint32(CommandAllocate))
	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = make([]byte, 3)
	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := Transfer(keys[0], keys[1], 1000)

	command := make([]byte, 4)
	binary.LittleEndian.PutUint32(command, uint32(CommandTransfer))
	assert.Equal(t, command, instruction.Data[0:4])
	assert.EqualValues(t, 1000, binary.LittleEndian.Uint64(instruction.Data[4:]))
	assert.EqualValues(t, ProgramKey[:], instruction.Program)

	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	decompiled, err := DecompileTransfer(instruction)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.From)
	assert.EqualValues(t, keys[1], decompiled.To)
	assert.EqualValues(t, 1000, decompiled.Lamports)

	_, err = DecompileAllocate(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestAllocateAndAssign(t *testing.T) {
	keys := generateKeys(t, 2)

	allocate := Allocate(keys[0], 41)
	decompiledAllocate, err := DecompileAllocate(allocate)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiledAllocate.Account)
	assert.EqualValues(t, 41, decompiledAllocate.Size)

	assign := Assign(keys[0], keys[1])
	decompiledAssign, err := DecompileAssign(assign)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiledAssign.Account)
	assert.EqualValues(t, keys[1], decompiledAssign.Owner)

	command, err := GetCommand(assign)
	require.NoError(t, err)
	assert.Equal(t, CommandAssign, command)

	_, err = DecompileAssign(allocate)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestSystemAccountIsProgramKey(t *testing.T) {
	assert.EqualValues(t, ProgramKey[:], SystemAccount)
	assert.Equal(t, "11111111111111111111111111111111", base58.Encode(SystemAccount))
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
