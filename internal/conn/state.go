// Package conn defines per-connection state and the byte sink
// connections use to receive out-of-band pushes (PUBLISH messages,
// propagated writes, REPLCONF GETACK prompts).
package conn

import (
	"net"
	"sync"

	"github.com/rs/xid"
)

// Sink is anything a connection's out-of-band frames can be written to.
// Production code backs it with a net.Conn; tests use an in-memory
// buffer.
type Sink interface {
	Write(p []byte) (int, error)
}

// State is the ephemeral, connection-owned half of spec.md §3's
// connection state: identity, subscriptions, transaction buffering, and
// replica flag. The shared store/pubsub/replication state it interacts
// with lives on the engine, guarded by the engine's single lock.
type State struct {
	ID string

	Sink Sink

	mu                sync.Mutex
	subscribedChannels map[string]bool
	txnActive         bool
	txnQueue          [][]byte // raw encoded command frames, replayed verbatim on EXEC
	isReplica         bool

	// ReplicaListeningPort is set by REPLCONF listening-port; nothing
	// else in the server reads it.
	ReplicaListeningPort string
}

func New(sink Sink) *State {
	return &State{
		ID:                 xid.New().String(),
		Sink:               sink,
		subscribedChannels: make(map[string]bool),
	}
}

func NewWithID(id string, sink Sink) *State {
	return &State{
		ID:                 id,
		Sink:               sink,
		subscribedChannels: make(map[string]bool),
	}
}

func (s *State) Subscribe(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribedChannels[channel] = true
	return len(s.subscribedChannels)
}

func (s *State) Unsubscribe(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribedChannels, channel)
	return len(s.subscribedChannels)
}

func (s *State) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribedChannels)
}

func (s *State) IsSubscribed() bool {
	return s.SubscriptionCount() > 0
}

func (s *State) BeginTxn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txnActive {
		return false
	}
	s.txnActive = true
	s.txnQueue = nil
	return true
}

func (s *State) TxnActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txnActive
}

func (s *State) QueueCommand(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txnQueue = append(s.txnQueue, raw)
}

// EndTxn clears txn state and returns the queued raw command frames, in
// order, for EXEC to replay.
func (s *State) EndTxn() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.txnQueue
	s.txnActive = false
	s.txnQueue = nil
	return queue
}

func (s *State) SetReplica(v bool)   { s.mu.Lock(); s.isReplica = v; s.mu.Unlock() }
func (s *State) IsReplica() bool     { s.mu.Lock(); defer s.mu.Unlock(); return s.isReplica }

// netSink adapts a net.Conn (or anything Write-able) directly; kept as a
// named type so the connection loop can type-assert for things like
// SetWriteDeadline without widening the Sink interface everyone else
// depends on.
type netSink struct {
	net.Conn
}

func NetSink(c net.Conn) Sink { return netSink{c} }
