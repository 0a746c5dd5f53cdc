package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over a set of stripe indices
type ring struct {
	hashRing *treemap.Map

	// minEntry caches the value of the min entry in hashRing, since
	// treemap.Map.Min() is O(log n).
	minEntry int
}

// newRing returns a new consistent hash ring over stripes [0, stripes), with
// each stripe having replicationFactor entries in the ring
func newRing(stripes, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for stripe := 0; stripe < int(stripes); stripe++ {
		stripeBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(stripeBytes, uint64(stripe))
		stripeHash, _ := murmur3.Sum128(stripeBytes)

		stripeHashBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(stripeHashBytes, stripeHash)

		for i := 0; i < int(replicationFactor); i++ {
			hasher := murmur3.New128()
			hasher.Write(stripeHashBytes)
			indexBytes := make([]byte, 4)
			binary.LittleEndian.PutUint32(indexBytes, uint32(i))
			hasher.Write(indexBytes)
			hash, _ := hasher.Sum128()
			hashRing.Put(int64(hash), stripe)
		}
	}

	r := &ring{
		hashRing: hashRing,
	}
	if _, minEntry := hashRing.Min(); minEntry != nil {
		r.minEntry = minEntry.(int)
	}
	return r
}

// shard consistently hashes the key to a stripe index
func (r *ring) shard(key []byte) int {
	hasher := murmur3.New128()
	hasher.Write(key)
	raw, _ := hasher.Sum128()
	_, stripe := r.hashRing.Ceiling(int64(raw))
	if stripe != nil {
		return stripe.(int)
	}
	return r.minEntry
}
