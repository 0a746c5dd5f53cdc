package ledger

import (
	"errors"
	"time"
)

// Record is the persisted state of a single ledger account.
type Record struct {
	Id uint64

	Address  string
	Owner    string
	Lamports uint64
	Data     []byte

	Version uint64

	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	var data []byte
	if len(r.Data) > 0 {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id: r.Id,

		Address:  r.Address,
		Owner:    r.Owner,
		Lamports: r.Lamports,
		Data:     data,

		Version: r.Version,

		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = nil
	if len(r.Data) > 0 {
		dst.Data = make([]byte, len(r.Data))
		copy(dst.Data, r.Data)
	}

	dst.Version = r.Version

	dst.LastUpdatedAt = r.LastUpdatedAt
}
