// Package resend implements the fixed-size resend ring spec component C6
// describes: every outbound application message is retained in a
// pre-allocated CAP=4096 slot ring so a peer's ResendRequest can be answered
// without unbounded memory growth. This is explicitly not persistence —
// spec.md's Non-goals rule out anything beyond this opaque in-memory ring —
// so the ring holds no index beyond "is this slot still this sequence".
//
// Grounded on original_source/src/active/fix/session/FIXResendRing.hpp: the
// same CAP/slot-size constants, the same "sequence mismatch means
// overwritten, return not-available" lookup contract.
package resend

import "sync/atomic"

// CAP is the number of slots in the ring.
const CAP = 4096

// MaxSlotBytes is the maximum length of a single retained message. Messages
// longer than this are retained truncated to their first MaxSlotBytes bytes
// (DESIGN.md open-question (c)): this
// core's FIX traffic (session-admin + order-entry) never approaches 512
// bytes, so truncation is accepted as a deliberate boundary rather than
// worked around.
const MaxSlotBytes = 512

type slot struct {
	sequence int64 // 0 means empty
	length   int
	bytes    [MaxSlotBytes]byte
}

// Ring stores the last (up to) CAP outbound messages keyed by sequence
// number, addressable by seq mod CAP.
type Ring struct {
	slots [CAP]slot
	head  atomic.Int64 // highest sequence stored so far
}

// New returns an empty resend ring.
func New() *Ring {
	return &Ring{}
}

// Store retains msg under sequence seq. Messages longer than MaxSlotBytes
// are silently truncated — they are still "present" for the purposes of
// Fetch, but Fetch returns the truncated bytes.
func (r *Ring) Store(seq int64, msg []byte) {
	s := &r.slots[seq%CAP]
	n := copy(s.bytes[:], msg)
	s.length = n
	s.sequence = seq // publish last: readers checking sequence see fully-written bytes or the old slot
	r.head.Store(seq)
}

// Fetch returns the bytes stored for seq, and whether they are still valid.
// A false result means the slot was since overwritten by a later sequence
// (seq mod CAP collision) or seq was never stored.
func (r *Ring) Fetch(seq int64) ([]byte, bool) {
	s := &r.slots[seq%CAP]
	if s.sequence != seq {
		return nil, false
	}
	out := make([]byte, s.length)
	copy(out, s.bytes[:s.length])
	return out, true
}

// Range fetches every available sequence in [begin, end] inclusive, in
// ascending order. Gaps (sequences not present or overwritten) are omitted
// from present and instead reported via missing so the caller (session,
// responding to a peer ResendRequest) can translate them into gap-fills.
func (r *Ring) Range(begin, end int64) (present map[int64][]byte, missing []int64) {
	present = make(map[int64][]byte, end-begin+1)
	for seq := begin; seq <= end; seq++ {
		if b, ok := r.Fetch(seq); ok {
			present[seq] = b
		} else {
			missing = append(missing, seq)
		}
	}
	return present, missing
}

// Head returns the highest sequence number stored.
func (r *Ring) Head() int64 {
	return r.head.Load()
}
