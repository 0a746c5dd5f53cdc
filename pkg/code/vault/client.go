package vault

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/sol-vault/pkg/cache"
	"github.com/code-payments/sol-vault/pkg/database/query"
	"github.com/code-payments/sol-vault/pkg/metrics"
	"github.com/code-payments/sol-vault/pkg/rate"
	"github.com/code-payments/sol-vault/pkg/runtime"
	vault_program "github.com/code-payments/sol-vault/pkg/solana/vault"
)

const (
	metricsStructName = "vault.client"
)

var (
	ErrVaultNotFound = errors.New("vault not found")
	ErrRateLimited   = errors.New("withdrawal rate limited")
)

// Client submits vault instructions to a Bank on behalf of vault owners
type Client struct {
	log  *logrus.Entry
	conf *conf
	bank *runtime.Bank

	addresses   cache.Cache[ed25519.PublicKey]
	withdrawals rate.Limiter
}

func NewClient(bank *runtime.Bank, configProvider ConfigProvider) *Client {
	ctx := context.Background()

	c := &Client{
		log:  logrus.StandardLogger().WithField("type", "vault/client"),
		conf: configProvider(),
		bank: bank,
	}
	budget := int(c.conf.addressCacheBudget.Get(ctx))
	c.addresses = cache.NewCache[ed25519.PublicKey](budget)

	// Both are keyed by owner, so they share a budget
	c.withdrawals = &rate.NoLimiter{}
	if perSecond := c.conf.withdrawalsPerSecond.Get(ctx); perSecond > 0 {
		c.withdrawals = rate.NewLocalRateLimiter(xrate.Limit(perSecond), budget)
	}

	return c
}

// ProgramID returns the vault program the client targets
func (c *Client) ProgramID(ctx context.Context) (ed25519.PublicKey, error) {
	programID, err := base58.Decode(c.conf.programId.Get(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "invalid vault program id")
	}
	if len(programID) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid vault program id length: %d", len(programID))
	}
	return programID, nil
}

func (c *Client) getAddressArgs(ctx context.Context, owner ed25519.PublicKey) (*vault_program.GetVaultAddressArgs, error) {
	programID, err := c.ProgramID(ctx)
	if err != nil {
		return nil, err
	}

	return &vault_program.GetVaultAddressArgs{
		Program: programID,
		Seed:    []byte(c.conf.seed.Get(ctx)),
		Owner:   owner,
	}, nil
}

// GetVaultAddress returns the vault address derived for owner
func (c *Client) GetVaultAddress(ctx context.Context, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	args, err := c.getAddressArgs(ctx, owner)
	if err != nil {
		return nil, err
	}

	cacheKey := base58.Encode(args.Program) + ":" + string(args.Seed) + ":" + base58.Encode(owner)
	if cached, ok := c.addresses.Retrieve(cacheKey); ok {
		return cached, nil
	}

	address, _, err := vault_program.GetVaultAddress(args)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving vault address")
	}

	// Concurrent derivations of the same address race to insert the same value
	if err := c.addresses.Insert(cacheKey, address, 1); err != nil && err != cache.ErrKeyExists {
		return nil, err
	}

	return address, nil
}

// GetVault returns the vault record of owner. ErrVaultNotFound is returned
// before the owner's first deposit.
func (c *Client) GetVault(ctx context.Context, owner ed25519.PublicKey) (*vault_program.VaultAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetVault")
	defer tracer.End()

	record, err := c.getVault(ctx, owner)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return record, nil
}

func (c *Client) getVault(ctx context.Context, owner ed25519.PublicKey) (*vault_program.VaultAccount, error) {
	address, err := c.GetVaultAddress(ctx, owner)
	if err != nil {
		return nil, err
	}

	programID, err := c.ProgramID(ctx)
	if err != nil {
		return nil, err
	}

	account, err := c.bank.GetAccount(ctx, address)
	if err == runtime.ErrAccountNotFound {
		return nil, ErrVaultNotFound
	} else if err != nil {
		return nil, err
	}

	if len(account.Data) == 0 || !account.Owner.Equal(programID) {
		return nil, ErrVaultNotFound
	}

	var record vault_program.VaultAccount
	if err := record.Unmarshal(account.Data); err != nil {
		return nil, errors.Wrapf(err, "invalid vault record at %s", base58.Encode(address))
	}
	if !record.IsInitialized {
		return nil, ErrVaultNotFound
	}

	return &record, nil
}

// Vault is a vault record along with where it lives on the ledger
type Vault struct {
	Address ed25519.PublicKey
	Record  *vault_program.VaultAccount
	Cursor  query.Cursor
}

// ListVaults pages through every initialized vault of the program. Accounts
// owned by the program that don't hold a valid record are skipped.
// ErrVaultNotFound is returned when the page is empty.
func (c *Client) ListVaults(ctx context.Context, opts ...query.Option) ([]*Vault, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ListVaults")
	defer tracer.End()

	programID, err := c.ProgramID(ctx)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	accounts, err := c.bank.GetProgramAccounts(ctx, programID, opts...)
	if err == runtime.ErrAccountNotFound {
		return nil, ErrVaultNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var res []*Vault
	for _, account := range accounts {
		var record vault_program.VaultAccount
		if err := record.Unmarshal(account.Data); err != nil || !record.IsInitialized {
			c.log.WithField("address", base58.Encode(account.Address)).Debug("skipping account without a vault record")
			continue
		}

		res = append(res, &Vault{
			Address: account.Address,
			Record:  &record,
			Cursor:  account.Cursor,
		})
	}

	if len(res) == 0 {
		return nil, ErrVaultNotFound
	}
	return res, nil
}

// Deposit moves amount lamports from owner into their vault, creating the
// vault on first use.
func (c *Client) Deposit(ctx context.Context, owner ed25519.PrivateKey, amount uint64) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Deposit")
	defer tracer.End()

	ownerPublicKey := owner.Public().(ed25519.PublicKey)

	log := c.log.WithFields(logrus.Fields{
		"method": "Deposit",
		"owner":  base58.Encode(ownerPublicKey),
		"amount": amount,
	})
	tracer.AddAttribute("amount", amount)

	err := func() error {
		programID, err := c.ProgramID(ctx)
		if err != nil {
			return err
		}

		address, err := c.GetVaultAddress(ctx, ownerPublicKey)
		if err != nil {
			return err
		}

		ix := vault_program.NewDepositInstruction(
			programID,
			&vault_program.DepositInstructionAccounts{
				Caller: ownerPublicKey,
				Vault:  address,
			},
			&vault_program.DepositInstructionArgs{
				Amount: amount,
			},
		)
		return c.bank.ProcessInstruction(ctx, ix, owner)
	}()
	if err != nil {
		log.WithError(err).Warn("failure depositing into vault")
		tracer.OnError(err)
		return err
	}

	log.Debug("deposited into vault")
	return nil
}

// Withdraw pays out a tenth of owner's vault balance and returns the amount
// paid. The payout is computed from the balance observed before the
// instruction executes. ErrRateLimited is returned when owner exceeds the
// configured withdrawal rate.
func (c *Client) Withdraw(ctx context.Context, owner ed25519.PrivateKey) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Withdraw")
	defer tracer.End()

	ownerPublicKey := owner.Public().(ed25519.PublicKey)

	log := c.log.WithFields(logrus.Fields{
		"method": "Withdraw",
		"owner":  base58.Encode(ownerPublicKey),
	})

	payout, err := func() (uint64, error) {
		if !c.withdrawals.Allow(base58.Encode(ownerPublicKey)) {
			return 0, ErrRateLimited
		}

		programID, err := c.ProgramID(ctx)
		if err != nil {
			return 0, err
		}

		address, err := c.GetVaultAddress(ctx, ownerPublicKey)
		if err != nil {
			return 0, err
		}

		record, err := c.getVault(ctx, ownerPublicKey)
		if err != nil && err != ErrVaultNotFound {
			return 0, err
		}

		ix := vault_program.NewWithdrawInstruction(
			programID,
			&vault_program.WithdrawInstructionAccounts{
				Caller: ownerPublicKey,
				Vault:  address,
			},
			&vault_program.WithdrawInstructionArgs{},
		)
		if err := c.bank.ProcessInstruction(ctx, ix, owner); err != nil {
			return 0, err
		}

		if record == nil {
			return 0, nil
		}
		return GetWithdrawalAmount(record.Balance), nil
	}()
	if err != nil {
		log.WithError(err).Warn("failure withdrawing from vault")
		tracer.OnError(err)
		return 0, err
	}

	log.WithField("payout", payout).Debug("withdrew from vault")
	return payout, nil
}
