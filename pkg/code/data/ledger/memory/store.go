package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/sol-vault/pkg/code/data/ledger"
	"github.com/code-payments/sol-vault/pkg/database/query"
)

type store struct {
	mu      sync.Mutex
	records map[string]*ledger.Record
	last    uint64
}

// New returns a new in memory ledger.Store
func New() ledger.Store {
	return &store{
		records: make(map[string]*ledger.Record),
	}
}

// Get implements ledger.Store.Get
func (s *store) Get(_ context.Context, address string) (*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[address]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*ledger.Record
	for _, item := range s.records {
		if item.Owner != owner {
			continue
		}

		if len(cursor) > 0 {
			if direction == query.Ascending && item.Id <= cursor.ToUint64() {
				continue
			}
			if direction == query.Descending && item.Id >= cursor.ToUint64() {
				continue
			}
		}

		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if direction == query.Descending {
			return items[i].Id > items[j].Id
		}
		return items[i].Id < items[j].Id
	})

	if limit > 0 && uint64(len(items)) > limit {
		items = items[:limit]
	}

	if len(items) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	res := make([]*ledger.Record, len(items))
	for i, item := range items {
		cloned := item.Clone()
		res[i] = &cloned
	}
	return res, nil
}

// Commit implements ledger.Store.Commit
func (s *store) Commit(_ context.Context, records ...*ledger.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, record := range records {
		if _, ok := seen[record.Address]; ok {
			return ledger.ErrStaleVersion
		}
		seen[record.Address] = struct{}{}

		var current uint64
		if item, ok := s.records[record.Address]; ok {
			current = item.Version
		}
		if current != record.Version {
			return ledger.ErrStaleVersion
		}
	}

	now := time.Now()
	for _, record := range records {
		item, ok := s.records[record.Address]
		if !ok {
			s.last++
			record.Id = s.last
		} else {
			record.Id = item.Id
		}

		record.Version++
		record.LastUpdatedAt = now

		cloned := record.Clone()
		s.records[record.Address] = &cloned
	}

	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ledger.Record)
	s.last = 0
}
