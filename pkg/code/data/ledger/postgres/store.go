package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/sol-vault/pkg/code/data/ledger"
	"github.com/code-payments/sol-vault/pkg/database/query"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres ledger.Store
func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address string) (*ledger.Record, error) {
	model, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	res := make([]*ledger.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}

// Commit implements ledger.Store.Commit
func (s *store) Commit(ctx context.Context, records ...*ledger.Record) error {
	models := make([]*model, len(records))
	for i, record := range records {
		model, err := toModel(record)
		if err != nil {
			return err
		}
		models[i] = model
	}

	if err := dbCommit(ctx, s.db, models); err != nil {
		return err
	}

	for i, model := range models {
		fromModel(model).CopyTo(records[i])
	}
	return nil
}
