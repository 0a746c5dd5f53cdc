package query

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
)

// Cursor is an opaque position in a result set ordered by record id. Cursors
// are the big endian encoding of the id.
type Cursor []byte

var EmptyCursor = Cursor{}

func ToCursor(id uint64) Cursor {
	c := make(Cursor, 8)
	binary.BigEndian.PutUint64(c, id)
	return c
}

func (c Cursor) ToUint64() uint64 {
	return binary.BigEndian.Uint64(c)
}

// String renders the cursor for logs and external callers
func (c Cursor) String() string {
	return base58.Encode(c)
}
