package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/sol-vault/pkg/code/data/ledger"
	pgutil "github.com/code-payments/sol-vault/pkg/database/postgres"
	q "github.com/code-payments/sol-vault/pkg/database/query"
)

const (
	tableName = "solvault__core_ledgeraccount"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address  string `db:"address"`
	Owner    string `db:"owner"`
	Lamports uint64 `db:"lamports"`
	Data     []byte `db:"data"`

	Version uint64 `db:"version"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *ledger.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      obj.Lamports,
		Data:          data,
		Version:       obj.Version,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *ledger.Record {
	var data []byte
	if len(obj.Data) > 0 {
		data = obj.Data
	}

	return &ledger.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      obj.Lamports,
		Data:          data,
		Version:       obj.Version,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, tx *sqlx.Tx) error {
	m.LastUpdatedAt = time.Now()

	var query string
	if m.Version == 0 {
		query = `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, version, last_updated_at)
			VALUES ($1, $2, $3, $4, $5::bigint + 1, $6)

			RETURNING
				id, address, owner, lamports, data, version, last_updated_at`
	} else {
		query = `UPDATE ` + tableName + `
			SET owner = $2, lamports = $3, data = $4, version = $5::bigint + 1, last_updated_at = $6
			WHERE address = $1 AND version = $5

			RETURNING
				id, address, owner, lamports, data, version, last_updated_at`
	}

	err := tx.QueryRowxContext(
		ctx,
		query,
		m.Address,
		m.Owner,
		m.Lamports,
		m.Data,
		m.Version,
		m.LastUpdatedAt.UTC(),
	).StructScan(m)

	// A concurrent insert of the same address surfaces as a unique violation,
	// while an outdated update matches no rows.
	err = pgutil.CheckUniqueViolation(err, ledger.ErrStaleVersion)
	return pgutil.CheckNoRows(err, ledger.ErrStaleVersion)
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT id, address, owner, lamports, data, version, last_updated_at FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT id, address, owner, lamports, data, version, last_updated_at FROM ` + tableName + `
		WHERE (owner = $1)`

	query, args := q.PaginateQuery(query, []interface{}{owner}, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, args...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}

func dbCommit(ctx context.Context, db *sqlx.DB, models []*model) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		for _, m := range models {
			if err := m.dbSave(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}
