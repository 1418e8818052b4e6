package pipeline

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are 26-character Crockford Base32 strings: a 48-bit millisecond
// timestamp, a 16-bit sequence within that millisecond, then 64 random
// bits. IDs sort by creation time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

func generateULID() string {
	ulidMu.Lock()
	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16|uint64(seq))
	rand.Read(b[8:])
	return crockford.EncodeToString(b[:])
}
