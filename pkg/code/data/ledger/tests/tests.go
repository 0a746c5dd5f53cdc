package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/sol-vault/pkg/code/data/ledger"
	"github.com/code-payments/sol-vault/pkg/database/query"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testHappyPath,
		testStaleVersion,
		testAtomicCommit,
		testValidation,
		testGetAllByOwner,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s ledger.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "account")
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		start := time.Now()

		expected := &ledger.Record{
			Address:  "account",
			Owner:    "system",
			Lamports: 1000,
		}

		require.NoError(t, s.Commit(ctx, expected))
		assert.EqualValues(t, 1, expected.Version)
		assert.True(t, expected.Id > 0)
		assert.True(t, expected.LastUpdatedAt.After(start))
		cloned := expected.Clone()

		actual, err := s.Get(ctx, "account")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, &cloned)

		expected.Owner = "program"
		expected.Lamports = 2000
		expected.Data = []byte{1, 2, 3}

		require.NoError(t, s.Commit(ctx, expected))
		assert.EqualValues(t, 2, expected.Version)
		assert.Equal(t, cloned.Id, expected.Id)
		cloned = expected.Clone()

		actual, err = s.Get(ctx, "account")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, &cloned)

		actual.Data[0] = 0xff
		actual, err = s.Get(ctx, "account")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, actual.Data)
	})
}

func testStaleVersion(t *testing.T, s ledger.Store) {
	t.Run("testStaleVersion", func(t *testing.T) {
		ctx := context.Background()

		record := &ledger.Record{
			Address:  "account",
			Owner:    "system",
			Lamports: 1000,
		}
		require.NoError(t, s.Commit(ctx, record))

		duplicate := &ledger.Record{
			Address:  "account",
			Owner:    "system",
			Lamports: 5000,
		}
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, duplicate))

		outdated := record.Clone()
		record.Lamports = 1500
		require.NoError(t, s.Commit(ctx, record))

		outdated.Lamports = 10
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, &outdated))

		actual, err := s.Get(ctx, "account")
		require.NoError(t, err)
		assert.EqualValues(t, 1500, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)
	})
}

func testAtomicCommit(t *testing.T, s ledger.Store) {
	t.Run("testAtomicCommit", func(t *testing.T) {
		ctx := context.Background()

		source := &ledger.Record{Address: "source", Owner: "system", Lamports: 1000}
		require.NoError(t, s.Commit(ctx, source))

		source.Lamports = 400
		destination := &ledger.Record{Address: "destination", Owner: "system", Lamports: 600}
		require.NoError(t, s.Commit(ctx, source, destination))
		assert.EqualValues(t, 2, source.Version)
		assert.EqualValues(t, 1, destination.Version)

		// The second record is stale, so neither change may land
		source.Lamports = 0
		stale := &ledger.Record{Address: "destination", Owner: "system", Lamports: 1600}
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, source, stale))

		actual, err := s.Get(ctx, "source")
		require.NoError(t, err)
		assert.EqualValues(t, 400, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)

		actual, err = s.Get(ctx, "destination")
		require.NoError(t, err)
		assert.EqualValues(t, 600, actual.Lamports)
		assert.EqualValues(t, 1, actual.Version)
	})
}

func testValidation(t *testing.T, s ledger.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		assert.Error(t, s.Commit(ctx, &ledger.Record{Owner: "system"}))
		assert.Error(t, s.Commit(ctx, &ledger.Record{Address: "account"}))

		_, err := s.Get(ctx, "account")
		assert.Equal(t, ledger.ErrAccountNotFound, err)
	})
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByOwner(ctx, "program", query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		var expected []*ledger.Record
		for i := 0; i < 5; i++ {
			record := &ledger.Record{
				Address:  fmt.Sprintf("vault%d", i),
				Owner:    "program",
				Lamports: uint64(i),
				Data:     []byte{byte(i)},
			}
			require.NoError(t, s.Commit(ctx, record))
			expected = append(expected, record)

			require.NoError(t, s.Commit(ctx, &ledger.Record{
				Address: fmt.Sprintf("user%d", i),
				Owner:   "system",
			}))
		}

		actual, err := s.GetAllByOwner(ctx, "program", query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 5)
		for i := range actual {
			assertEquivalentRecords(t, actual[i], expected[i])
		}

		actual, err = s.GetAllByOwner(ctx, "program", query.EmptyCursor, 2, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, actual[0], expected[4])
		assertEquivalentRecords(t, actual[1], expected[3])

		actual, err = s.GetAllByOwner(ctx, "program", query.ToCursor(expected[1].Id), 2, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, actual[0], expected[2])
		assertEquivalentRecords(t, actual[1], expected[3])

		actual, err = s.GetAllByOwner(ctx, "program", query.ToCursor(expected[1].Id), 10, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assertEquivalentRecords(t, actual[0], expected[0])

		_, err = s.GetAllByOwner(ctx, "program", query.ToCursor(expected[4].Id), 10, query.Ascending)
		assert.Equal(t, ledger.ErrAccountNotFound, err)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *ledger.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, obj1.Data, obj2.Data)
	assert.Equal(t, obj1.Version, obj2.Version)
}
