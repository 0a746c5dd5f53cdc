package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	base "sync"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/sol-vault/pkg/code/data/ledger"
	"github.com/code-payments/sol-vault/pkg/database/query"
	"github.com/code-payments/sol-vault/pkg/metrics"
	"github.com/code-payments/sol-vault/pkg/retry"
	"github.com/code-payments/sol-vault/pkg/retry/backoff"
	"github.com/code-payments/sol-vault/pkg/solana"
	"github.com/code-payments/sol-vault/pkg/solana/system"
	"github.com/code-payments/sol-vault/pkg/sync"
)

// Account is a committed account as observed through the Bank
type Account struct {
	Address  ed25519.PublicKey
	Owner    ed25519.PublicKey
	Lamports uint64
	Data     []byte

	// Cursor positions the account within GetProgramAccounts results
	Cursor query.Cursor
}

// Bank executes instructions against accounts persisted in a ledger.Store.
// Each instruction runs to completion and commits atomically, or fails and
// leaves every account untouched. Instructions touching overlapping accounts
// are serialized.
type Bank struct {
	log   *logrus.Entry
	conf  *conf
	store ledger.Store
	locks *sync.StripedLock

	programsMu base.RWMutex
	programs   map[string]Program
}

func NewBank(store ledger.Store, configProvider ConfigProvider) *Bank {
	ctx := context.Background()

	b := &Bank{
		log:      logrus.StandardLogger().WithField("type", "runtime/bank"),
		conf:     configProvider(),
		store:    store,
		programs: make(map[string]Program),
	}
	b.locks = sync.NewStripedLock(uint(b.conf.lockStripes.Get(ctx)))

	b.RegisterProgram(system.SystemAccount, SystemProgram)

	return b
}

// RegisterProgram makes program executable under programID, replacing any
// program previously registered there.
func (b *Bank) RegisterProgram(programID ed25519.PublicKey, program Program) {
	b.programsMu.Lock()
	defer b.programsMu.Unlock()

	b.programs[string(programID)] = program
}

func (b *Bank) getProgram(programID ed25519.PublicKey) (Program, bool) {
	b.programsMu.RLock()
	defer b.programsMu.RUnlock()

	program, ok := b.programs[string(programID)]
	return program, ok
}

// Rent returns the rent parameters programs execute with
func (b *Bank) Rent(ctx context.Context) system.Rent {
	return system.Rent{
		LamportsPerByteYear: b.conf.lamportsPerByteYear.Get(ctx),
		ExemptionThreshold:  b.conf.exemptionThreshold.Get(ctx),
	}
}

// GetAccount returns the committed state of an account. ErrAccountNotFound is
// returned for accounts that were never committed.
func (b *Bank) GetAccount(ctx context.Context, address ed25519.PublicKey) (*Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetAccount")
	defer tracer.End()

	record, err := b.store.Get(ctx, base58.Encode(address))
	if err == ledger.ErrAccountNotFound {
		return nil, ErrAccountNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting ledger account")
	}

	return fromRecord(record)
}

// GetProgramAccounts pages through the committed accounts owned by programID.
// ErrAccountNotFound is returned when the page is empty.
func (b *Bank) GetProgramAccounts(ctx context.Context, programID ed25519.PublicKey, opts ...query.Option) ([]*Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetProgramAccounts")
	defer tracer.End()

	req, err := query.DefaultPaginationHandler(opts...)
	if err != nil {
		return nil, err
	}

	records, err := b.store.GetAllByOwner(ctx, base58.Encode(programID), req.Cursor, req.Limit, req.SortBy)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrAccountNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting ledger accounts")
	}

	res := make([]*Account, len(records))
	for i, record := range records {
		res[i], err = fromRecord(record)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func fromRecord(record *ledger.Record) (*Account, error) {
	address, err := base58.Decode(record.Address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address in ledger account")
	}

	owner, err := base58.Decode(record.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner in ledger account")
	}

	return &Account{
		Address:  address,
		Owner:    owner,
		Lamports: record.Lamports,
		Data:     record.Data,
		Cursor:   query.ToCursor(record.Id),
	}, nil
}

// Airdrop credits lamports to an account, creating it as a system account if
// it doesn't exist.
func (b *Bank) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Airdrop")
	defer tracer.End()

	log := b.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"address":  base58.Encode(address),
		"lamports": lamports,
	})

	_, err := b.withCommitRetries(ctx, func() error {
		unlock := b.locks.LockAll(address)
		defer unlock()

		loaded, err := b.load(ctx, address)
		if err != nil {
			return err
		}

		if loaded.state.lamports+lamports < loaded.state.lamports {
			return ErrLamportsOverflow
		}
		loaded.state.lamports += lamports

		return b.store.Commit(ctx, loaded.toRecord())
	})
	if err != nil {
		log.WithError(err).Warn("failure airdropping lamports")
		tracer.OnError(err)
		return err
	}

	log.Debug("airdropped lamports")
	return nil
}

// ProcessInstruction verifies the signatures for ix, executes it and commits
// the resulting account state. Program failures are returned as a
// solana.InstructionError.
func (b *Bank) ProcessInstruction(ctx context.Context, ix solana.Instruction, signers ...ed25519.PrivateKey) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ProcessInstruction")
	defer tracer.End()

	start := time.Now()

	execution := uuid.New().String()
	tracer.AddAttribute("execution", execution)

	log := b.log.WithFields(logrus.Fields{
		"method":    "ProcessInstruction",
		"program":   base58.Encode(ix.Program),
		"execution": execution,
	})

	var attempts uint
	err := func() error {
		if err := verifySignatures(ix, signers); err != nil {
			return err
		}

		var err error
		attempts, err = b.withCommitRetries(ctx, func() error {
			return b.execute(ctx, log, ix)
		})
		return err
	}()

	recordInstructionProcessedEvent(ctx, ix.Program, attempts, time.Since(start), err)

	if err != nil {
		log.WithError(err).Debug("instruction failed")
		tracer.OnError(err)
		return err
	}

	log.Debug("instruction processed")
	return nil
}

func (b *Bank) execute(ctx context.Context, log *logrus.Entry, ix solana.Instruction) error {
	program, ok := b.getProgram(ix.Program)
	if !ok {
		return solana.InstructionError{Index: 0, Err: solana.InstructionErrorUnsupportedProgramID}
	}

	unlock := b.locks.LockAll(ix.AccountKeys()...)
	defer unlock()

	loaded := make(map[string]*loadedAccount)
	infos := make([]*AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		account, ok := loaded[string(meta.PublicKey)]
		if !ok {
			var err error
			account, err = b.load(ctx, meta.PublicKey)
			if err != nil {
				return err
			}
			loaded[string(meta.PublicKey)] = account
		}

		infos[i] = &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			state:      account.state,
		}
	}

	root := &invocation{
		log:      log,
		rent:     b.Rent(ctx),
		programs: b.getProgram,
	}
	if err := root.execute(program, ix.Program, infos, ix.Data); err != nil {
		return solana.InstructionError{Index: 0, Err: err}
	}

	var records []*ledger.Record
	for _, account := range loaded {
		if account.isDirty() {
			records = append(records, account.toRecord())
		}
	}
	if len(records) == 0 {
		return nil
	}

	return b.store.Commit(ctx, records...)
}

// withCommitRetries re-runs fn when its commit loses an optimistic version
// race with another writer of the same ledger.
func (b *Bank) withCommitRetries(ctx context.Context, fn func() error) (uint, error) {
	delay := b.conf.commitBackoff.Get(ctx)

	attempts, err := retry.RetryWithContext(
		ctx,
		fn,
		retry.RetriableErrors(ledger.ErrStaleVersion),
		retry.Limit(uint(b.conf.commitAttempts.Get(ctx))),
		retry.BackoffWithJitter(backoff.BinaryExponential(delay), 8*delay, 0.1),
	)
	if errors.Is(err, ledger.ErrStaleVersion) {
		recordCommitAttemptsExceeded(ctx)
	}
	return attempts, err
}

type loadedAccount struct {
	address ed25519.PublicKey
	version uint64
	initial accountState
	state   *account
}

func (b *Bank) load(ctx context.Context, address ed25519.PublicKey) (*loadedAccount, error) {
	record, err := b.store.Get(ctx, base58.Encode(address))
	if err == ledger.ErrAccountNotFound {
		state := &account{
			owner: cloneBytes(system.SystemAccount),
		}
		return &loadedAccount{
			address: address,
			initial: state.snapshot(),
			state:   state,
		}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "error loading ledger account")
	}

	owner, err := base58.Decode(record.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner in ledger account")
	}

	state := &account{
		lamports: record.Lamports,
		owner:    owner,
		data:     record.Data,
	}
	return &loadedAccount{
		address: address,
		version: record.Version,
		initial: state.snapshot(),
		state:   state,
	}, nil
}

func (a *loadedAccount) isDirty() bool {
	return !a.initial.equals(a.state)
}

func (a *loadedAccount) toRecord() *ledger.Record {
	return &ledger.Record{
		Address:  base58.Encode(a.address),
		Owner:    base58.Encode(a.state.owner),
		Lamports: a.state.lamports,
		Data:     cloneBytes(a.state.data),
		Version:  a.version,
	}
}

// verifySignatures proves each signer account of ix is backed by one of the
// provided keys. Program derived addresses have no private key and can never
// satisfy this.
//
// The message is signed here with the caller's own key, so this establishes
// possession of the key only. The bank is in-process and never receives
// signatures produced elsewhere.
func verifySignatures(ix solana.Instruction, signers []ed25519.PrivateKey) error {
	message := ix.Message()

	for _, required := range ix.Signers() {
		if !solana.IsOnCurve(required) {
			return ErrInvalidSigner
		}

		var signer ed25519.PrivateKey
		for _, candidate := range signers {
			if bytes.Equal(candidate.Public().(ed25519.PublicKey), required) {
				signer = candidate
				break
			}
		}
		if signer == nil {
			return ErrMissingSignature
		}

		signature := ed25519.Sign(signer, message)
		if !ed25519.Verify(required, message, signature) {
			return ErrSignatureVerificationFailed
		}
	}

	return nil
}
