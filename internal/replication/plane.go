// Package replication implements the leader/follower plane described in
// spec.md §4.7: handshake, write propagation, ACK accounting, and the
// synchronous WAIT barrier. Style is grounded on the teacher's own
// internal/meshage (node-to-node messaging) and internal/ron (heartbeat
// and ack bookkeeping) packages, adapted from gob-framed mesh messages to
// this protocol's RESP command stream.
package replication

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/sandia-minimega/minikv/internal/blocking"
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/internal/store"
	log "github.com/sandia-minimega/minikv/pkg/minilog"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// GetAckDelay is how long the leader waits after draining pending writes
// before prompting followers for an ACK offset. Left as a var (not const)
// so tests can shrink it.
var GetAckDelay = 100 * time.Millisecond

// Plane holds a leader's replication state. It does not own a lock of its
// own: callers (the engine) serialize access to it under the same mutex
// that guards the store, per spec.md §5.
type Plane struct {
	ReplID string
	offset int64

	followers map[string]conn.Sink
	pending   [][]byte
	ackCount  int

	mu   *sync.Mutex // shared with the engine's lock
	cond *sync.Cond

	clock store.Clock
}

// NewPlane creates a leader's replication plane. mu is the engine's own
// lock; the plane's condition variable is built on it so WaitForAcks can
// release and reacquire the same lock the rest of the engine holds.
func NewPlane(mu *sync.Mutex, clock store.Clock) *Plane {
	return &Plane{
		ReplID:    randomReplID(),
		followers: make(map[string]conn.Sink),
		mu:        mu,
		cond:      sync.NewCond(mu),
		clock:     clock,
	}
}

func randomReplID() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal("replication: generating repl id: %v", err)
	}
	return fmt.Sprintf("%x", buf)
}

func (p *Plane) Offset() int64 { return p.offset }

func (p *Plane) AckCount() int { return p.ackCount }

func (p *Plane) FollowerCount() int { return len(p.followers) }

// RegisterFollower adds connID as a follower after its PSYNC handshake
// completes. Per spec.md §4.7, if there is nothing pending at that exact
// moment the follower is trivially caught up, so it counts toward
// ack_count immediately.
func (p *Plane) RegisterFollower(connID string, sink conn.Sink) {
	p.followers[connID] = sink
	if len(p.pending) == 0 {
		p.ackCount++
		p.cond.Broadcast()
	}
}

// RemoveFollower drops a follower after an I/O error, per the
// failure-semantics table: the rest of the plane keeps operating.
func (p *Plane) RemoveFollower(connID string) {
	delete(p.followers, connID)
}

// AppendWrite buffers an encoded write command for the next Drain. Must
// only be called for commands that actually succeeded — errored writes
// never enter pending_writes, per spec.md §7.
func (p *Plane) AppendWrite(encoded []byte) {
	p.pending = append(p.pending, encoded)
}

// PendingCount reports buffered-but-undrained write count; used by tests
// and INFO-style introspection.
func (p *Plane) PendingCount() int { return len(p.pending) }

// Drain sends all pending writes to every follower, in the order they
// were appended (preserving the leader's linearization), resets
// ack_count to 0, and schedules a delayed GETACK probe. scheduleGetAck is
// invoked without the engine lock held (it dials back in later), so
// callers must pass a function that re-acquires the lock itself.
func (p *Plane) Drain(scheduleGetAck func()) {
	if len(p.pending) == 0 {
		return
	}

	batch := p.pending
	p.pending = nil

	var total int64
	for _, raw := range batch {
		total += int64(len(raw))
	}

	for id, sink := range p.followers {
		for _, raw := range batch {
			if _, err := sink.Write(raw); err != nil {
				log.Error("replication: write to follower %v: %v", id, err)
				delete(p.followers, id)
			}
		}
	}

	p.offset += total
	p.ackCount = 0

	if len(p.followers) > 0 && scheduleGetAck != nil {
		time.AfterFunc(GetAckDelay, scheduleGetAck)
	}
}

// SendGetAck issues an out-of-band REPLCONF GETACK * to every follower.
// Call with the engine lock held; per the open question in spec.md §9,
// this implementation sends one GETACK per Drain rather than batching
// multiple write bursts into a single probe.
func (p *Plane) SendGetAck() {
	frame := resp.EncodeCommand("REPLCONF", "GETACK", "*")
	for id, sink := range p.followers {
		if _, err := sink.Write(frame); err != nil {
			log.Error("replication: GETACK to follower %v: %v", id, err)
			delete(p.followers, id)
		}
	}
}

// RecordAck increments ack_count on a REPLCONF ACK from a follower.
func (p *Plane) RecordAck() {
	p.ackCount++
	p.cond.Broadcast()
}

// WaitForAcks blocks until ack_count >= n or deadlineMillis elapses
// (blocking.Forever to wait indefinitely), releasing the engine lock while
// waiting (the caller must hold it on entry and will hold it again on
// return). Returns the ack_count observed at wakeup.
func (p *Plane) WaitForAcks(n int, deadlineMillis int64) int {
	blocking.Until(p.cond, p.mu, deadlineMillis, p.clock.NowMillis, func() bool {
		return p.ackCount >= n
	})
	return p.ackCount
}
