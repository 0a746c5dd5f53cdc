package solana

import (
	"bytes"
	"crypto/ed25519"
	"errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is a single account reference within an instruction along with
// the privileges the caller grants for it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// AccountKeys returns the referenced keys in order. Duplicates are kept.
func (i Instruction) AccountKeys() [][]byte {
	keys := make([][]byte, len(i.Accounts))
	for idx, meta := range i.Accounts {
		keys[idx] = meta.PublicKey
	}
	return keys
}

// Signers returns the keys whose signature the instruction requires
func (i Instruction) Signers() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, meta := range i.Accounts {
		if meta.IsSigner {
			signers = append(signers, meta.PublicKey)
		}
	}
	return signers
}

// Message is the byte string signers sign over: the program id, then each
// account key followed by a flags byte (bit 0 signer, bit 1 writable), then
// the instruction data.
func (i Instruction) Message() []byte {
	var buf bytes.Buffer
	buf.Write(i.Program)
	for _, meta := range i.Accounts {
		buf.Write(meta.PublicKey)

		var flags byte
		if meta.IsSigner {
			flags |= 1
		}
		if meta.IsWritable {
			flags |= 2
		}
		buf.WriteByte(flags)
	}
	buf.Write(i.Data)
	return buf.Bytes()
}
