package store

import "fmt"

// Kind tags the value variant a key currently holds.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindList
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindStream:
		return "stream"
	default:
		return "none"
	}
}

// StreamID is the (ms, seq) pair that orders stream entries, rendered on
// the wire as "ms-seq".
type StreamID struct {
	MS  uint64
	Seq uint64
}

// Less implements the structural (ms, seq) ordering required by XRANGE and
// XADD's monotonicity check — NOT a string compare, per spec.md §4.3.
func (a StreamID) Less(b StreamID) bool {
	if a.MS != b.MS {
		return a.MS < b.MS
	}
	return a.Seq < b.Seq
}

func (a StreamID) LessEq(b StreamID) bool {
	return a.Less(b) || a == b
}

func (a StreamID) IsZero() bool {
	return a.MS == 0 && a.Seq == 0
}

// String renders the canonical "ms-seq" wire form of an id.
func (a StreamID) String() string {
	return fmt.Sprintf("%d-%d", a.MS, a.Seq)
}

type StreamEntry struct {
	ID     StreamID
	Fields []string // flattened field,value,field,value,...
}

// Value is the tagged union stored per key. Only the fields relevant to
// Kind are meaningful.
type Value struct {
	Kind Kind

	// string
	Str      []byte
	ExpireAt int64 // absolute ms since epoch; 0 means no expiry
	hasTTL   bool

	// list
	List    [][]byte
	Waiters []string // FIFO wait queue of connection ids blocked on BLPOP

	// stream
	Stream []StreamEntry
}

func newString(val []byte, expireAt int64, hasTTL bool) *Value {
	return &Value{Kind: KindString, Str: val, ExpireAt: expireAt, hasTTL: hasTTL}
}

func (v *Value) expired(now int64) bool {
	return v.Kind == KindString && v.hasTTL && now >= v.ExpireAt
}

func (v *Value) lastStreamID() StreamID {
	if len(v.Stream) == 0 {
		return StreamID{}
	}
	return v.Stream[len(v.Stream)-1].ID
}
