package query

import (
	"github.com/pkg/errors"
)

// Ordering is the direction a result set is walked by record id
type Ordering uint

const (
	Ascending Ordering = iota
	Descending
)

// ParseOrdering accepts "asc" or "desc"
func ParseOrdering(val string) (Ordering, error) {
	switch val {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return 0, errors.Errorf("invalid ordering: %q", val)
}

func (o Ordering) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// keysetComparator is the operator selecting ids strictly past a cursor
func (o Ordering) keysetComparator() string {
	if o == Descending {
		return "<"
	}
	return ">"
}

func (o Ordering) sqlKeyword() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}
