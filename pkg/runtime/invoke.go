package runtime

import (
	"bytes"
	"crypto/ed25519"
	"math/bits"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/sol-vault/pkg/solana"
	"github.com/code-payments/sol-vault/pkg/solana/system"
)

const (
	maxInvokeDepth = 4
)

// invocation is a single frame of program execution. It implements Environment
// for the program it runs.
type invocation struct {
	log      *logrus.Entry
	rent     system.Rent
	programs func(ed25519.PublicKey) (Program, bool)

	depth     int
	programID ed25519.PublicKey

	// accounts holds the privileges granted to this frame, merged per key
	accounts map[string]*AccountInfo
	pre      map[string]accountState
}

func (i *invocation) Rent() system.Rent {
	return i.rent
}

func (i *invocation) Log() *logrus.Entry {
	return i.log
}

// InvokeSigned implements Environment.InvokeSigned
func (i *invocation) InvokeSigned(ix solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error {
	if i.depth+1 > maxInvokeDepth {
		return solana.InstructionErrorCallDepth
	}

	pdaSigners := make(map[string]struct{})
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(i.programID, seeds...)
		if err != nil {
			return solana.InstructionErrorInvalidSeeds
		}
		pdaSigners[string(address)] = struct{}{}
	}

	passed := make(map[string]struct{})
	for _, info := range accounts {
		known, ok := i.accounts[string(info.Key)]
		if !ok || known.state != info.state {
			return solana.InstructionErrorMissingAccount
		}
		passed[string(info.Key)] = struct{}{}
	}

	views := make([]*AccountInfo, len(ix.Accounts))
	for idx, meta := range ix.Accounts {
		if _, ok := passed[string(meta.PublicKey)]; !ok {
			return solana.InstructionErrorMissingAccount
		}
		caller := i.accounts[string(meta.PublicKey)]
		if caller.state.borrowed {
			return solana.InstructionErrorAccountBorrowFailed
		}

		_, isPdaSigner := pdaSigners[string(meta.PublicKey)]
		if meta.IsSigner && !caller.IsSigner && !isPdaSigner {
			return solana.InstructionErrorPrivilegeEscalation
		}
		if meta.IsWritable && !caller.IsWritable {
			return solana.InstructionErrorPrivilegeEscalation
		}

		views[idx] = &AccountInfo{
			Key:        caller.Key,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			state:      caller.state,
		}
	}

	program, ok := i.programs(ix.Program)
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}

	// Changes made by this frame so far are held to its own rules before the
	// callee's changes replace the baseline of the accounts it touches.
	if err := i.verifyPendingChanges(); err != nil {
		return err
	}

	saved := make(map[*account]accountState)
	for _, view := range views {
		saved[view.state] = view.state.snapshot()
	}

	err := i.execute(program, ix.Program, views, ix.Data)
	if err != nil {
		for state, snapshot := range saved {
			state.restore(snapshot)
		}
		return err
	}

	// The callee's changes were validated under its own rules, so they become
	// the baseline for this frame.
	for _, view := range views {
		i.pre[string(view.Key)] = view.state.snapshot()
	}

	return nil
}

// verifyPendingChanges checks every account of the frame against its baseline
// and, when they pass, makes the current state the new baseline.
func (i *invocation) verifyPendingChanges() error {
	frame := make([]*AccountInfo, 0, len(i.accounts))
	for _, info := range i.accounts {
		frame = append(frame, info)
	}

	if err := verifyAccountChanges(i.programID, i.pre, frame); err != nil {
		i.log.WithError(err).Trace("changes before invoke failed verification")
		return err
	}

	for key, info := range i.accounts {
		i.pre[key] = info.state.snapshot()
	}
	return nil
}

// execute runs program in a new frame nested under i and validates the
// resulting account changes.
func (i *invocation) execute(program Program, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	frame := newInvocation(i.log, i.rent, i.programs, i.depth+1, programID, accounts)

	frame.log.Trace("invoking program")

	if err := program.Process(frame, programID, accounts, data); err != nil {
		frame.log.WithError(err).Trace("program failed")
		return err
	}

	return verifyAccountChanges(programID, frame.pre, accounts)
}

func newInvocation(
	log *logrus.Entry,
	rent system.Rent,
	programs func(ed25519.PublicKey) (Program, bool),
	depth int,
	programID ed25519.PublicKey,
	accounts []*AccountInfo,
) *invocation {
	known := make(map[string]*AccountInfo)
	pre := make(map[string]accountState)
	for _, info := range accounts {
		key := string(info.Key)

		if existing, ok := known[key]; ok {
			existing.IsSigner = existing.IsSigner || info.IsSigner
			existing.IsWritable = existing.IsWritable || info.IsWritable
			continue
		}

		known[key] = &AccountInfo{
			Key:        info.Key,
			IsSigner:   info.IsSigner,
			IsWritable: info.IsWritable,
			state:      info.state,
		}
		pre[key] = info.state.snapshot()
	}

	return &invocation{
		log: log.WithFields(logrus.Fields{
			"program": base58.Encode(programID),
			"depth":   depth,
		}),
		rent:      rent,
		programs:  programs,
		depth:     depth,
		programID: programID,
		accounts:  known,
		pre:       pre,
	}
}

// verifyAccountChanges enforces the rules every program is held to:
//   - lamports are conserved across the accounts of the invocation
//   - only the owner may debit an account or modify its data
//   - readonly accounts never change
//   - ownership is only reassigned by the current owner on zeroed data
func verifyAccountChanges(programID ed25519.PublicKey, pre map[string]accountState, accounts []*AccountInfo) error {
	writable := make(map[string]bool)
	states := make(map[string]*account)
	for _, info := range accounts {
		key := string(info.Key)
		writable[key] = writable[key] || info.IsWritable
		states[key] = info.state
	}

	var preHi, preLo, postHi, postLo uint64
	for key, post := range states {
		before := pre[key]

		var carry uint64
		preLo, carry = bits.Add64(preLo, before.lamports, 0)
		preHi += carry
		postLo, carry = bits.Add64(postLo, post.lamports, 0)
		postHi += carry

		if err := verifyAccountChange(programID, before, post, writable[key]); err != nil {
			return err
		}
	}

	if preHi != postHi || preLo != postLo {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return nil
}

func verifyAccountChange(programID ed25519.PublicKey, before accountState, after *account, isWritable bool) error {
	isOwner := bytes.Equal(before.owner, programID)

	if !bytes.Equal(before.owner, after.owner) {
		if !isWritable || !isOwner || !isZeroed(after.data) {
			return solana.InstructionErrorModifiedProgramID
		}
	}

	if after.lamports != before.lamports && !isWritable {
		return solana.InstructionErrorReadonlyLamportChange
	}
	if after.lamports < before.lamports && !isOwner {
		return solana.InstructionErrorExternalAccountLamportSpend
	}

	if len(after.data) != len(before.data) && !isOwner {
		return solana.InstructionErrorAccountDataSizeChanged
	}
	if !bytes.Equal(after.data, before.data) || len(after.data) != len(before.data) {
		if !isWritable {
			return solana.InstructionErrorReadonlyDataModified
		}
		if !isOwner {
			return solana.InstructionErrorExternalAccountDataModified
		}
	}

	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
