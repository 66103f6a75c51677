// Package exec wires the wire codec, command dispatch, data model, and
// replication plane together into the single external operation spec.md §1
// describes: submit a frame, get back the frames to write. Each verb gets
// its own file, grounded on the per-command-object organization the design
// notes describe in the original source.
package exec

import (
	"strings"
	"sync"

	"github.com/sandia-minimega/minikv/internal/command"
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/internal/metrics"
	"github.com/sandia-minimega/minikv/internal/rdb"
	"github.com/sandia-minimega/minikv/internal/replication"
	"github.com/sandia-minimega/minikv/internal/store"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// Engine is the process-wide orchestrator: the single mutex required by
// spec.md §5 guards the store, the pub/sub map, the connection registry,
// and the replication plane all together.
type Engine struct {
	mu   sync.Mutex
	cond *sync.Cond

	st    *store.Store
	clock store.Clock
	plane *replication.Plane

	channels    map[string]map[string]bool // channel -> set of connection ids
	connections map[string]*conn.State     // connection id -> state, for pub/sub and follower sinks

	// nodeIsReplica reflects this process's own role (set when started with
	// --replicaof), independent of any connection's per-connection
	// is_replica flag (which marks that connection as OUR follower).
	nodeIsReplica bool
}

func New(clock store.Clock) *Engine {
	e := &Engine{
		st:          store.New(),
		clock:       clock,
		channels:    make(map[string]map[string]bool),
		connections: make(map[string]*conn.State),
	}
	e.cond = sync.NewCond(&e.mu)
	e.plane = replication.NewPlane(&e.mu, clock)
	return e
}

// SetNodeRole records whether this process was started with --replicaof,
// purely for INFO's role line.
func (e *Engine) SetNodeRole(isReplica bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodeIsReplica = isReplica
}

// RegisterConnection makes a connection visible to PUBLISH (as a delivery
// target) and to the follower registry.
func (e *Engine) RegisterConnection(c *conn.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connections[c.ID] = c
	metrics.ConnectedClients.Inc()
}

// UnregisterConnection removes a connection from pub/sub, the connection
// registry, and the follower set. Per spec.md §5's cancellation note, any
// BLPOP wait-queue entry for this connection is left for a later pass to
// notice as stale rather than actively scrubbed from every list.
func (e *Engine) UnregisterConnection(c *conn.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.connections, c.ID)
	metrics.ConnectedClients.Dec()
	for ch, subs := range e.channels {
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(e.channels, ch)
		}
	}
	e.plane.RemoveFollower(c.ID)
}

// LoadSnapshot seeds the store from a parsed snapshot before the listener
// starts accepting connections.
func (e *Engine) LoadSnapshot(entries []rdb.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ent := range entries {
		px := int64(0)
		if ent.HasExpiry {
			px = ent.ExpireAtMillis - e.clock.NowMillis()
		}
		e.st.SetString(ent.Key, ent.Value, px, ent.HasExpiry, e.clock.NowMillis())
	}
}

// Submit is the core external operation: parse/dispatch a client frame and
// return the raw bytes to write back to its sink, in order. Transaction
// queueing happens here, before any executor runs, per spec.md §4.2.
func (e *Engine) Submit(c *conn.State, frame *resp.Frame) [][]byte {
	cmd, err := command.Dispatch(frame)
	if err != nil {
		return [][]byte{resp.Encode(resp.Err(err.Error()))}
	}

	if c.TxnActive() && cmd.Name != "EXEC" && cmd.Name != "DISCARD" && cmd.Name != "MULTI" {
		c.QueueCommand(resp.Encode(frame))
		return [][]byte{resp.Encode(resp.Simple("QUEUED"))}
	}

	e.mu.Lock()
	reply, chunks := e.dispatch(c, cmd)
	e.mu.Unlock()

	if chunks != nil {
		return chunks
	}
	if reply == nil {
		return nil
	}
	return [][]byte{resp.Encode(reply)}
}

// dispatch runs one already-arity-checked command under the engine lock and
// handles the generic write-propagation rule: a write command whose reply
// is not an error enters pending_writes and is immediately drained. PSYNC
// is the one command whose response isn't a single frame, so it returns its
// raw chunks directly instead.
func (e *Engine) dispatch(c *conn.State, cmd *command.Command) (*resp.Frame, [][]byte) {
	metrics.CommandsTotal.WithLabelValues(cmd.Name).Inc()

	if cmd.Name == "PSYNC" {
		return nil, e.cmdPsync(c, cmd.Args)
	}

	reply := e.execute(c, cmd)

	if command.IsWriteCommand(cmd.Name) && reply != nil && reply.Kind != resp.Error {
		e.plane.AppendWrite(resp.Encode(e.propagateFrame(cmd, reply)))
		e.plane.Drain(e.scheduleGetAck)
		metrics.ReplicationOffsetBytes.Set(float64(e.plane.Offset()))
	}
	if cmd.Name == "WAIT" || cmd.Name == "REPLCONF" {
		metrics.ReplicaAckCount.Set(float64(e.plane.AckCount()))
	}

	return reply, nil
}

func (e *Engine) execute(c *conn.State, cmd *command.Command) *resp.Frame {
	now := e.clock.NowMillis()
	switch cmd.Name {
	case "PING":
		return e.cmdPing(c)
	case "ECHO":
		return e.cmdEcho(cmd.Args)
	case "SET":
		return e.cmdSet(cmd.Args, now)
	case "GET":
		return e.cmdGet(cmd.Args, now)
	case "INCR":
		return e.cmdIncr(cmd.Args, now)
	case "TYPE":
		return e.cmdType(cmd.Args, now)
	case "KEYS":
		return e.cmdKeys(cmd.Args, now)
	case "RPUSH":
		return e.cmdRpush(cmd.Args, now)
	case "LPUSH":
		return e.cmdLpush(cmd.Args, now)
	case "LLEN":
		return e.cmdLlen(cmd.Args, now)
	case "LPOP":
		return e.cmdLpop(cmd.Args, now)
	case "LRANGE":
		return e.cmdLrange(cmd.Args, now)
	case "BLPOP":
		return e.cmdBlpop(c, cmd.Args, now)
	case "XADD":
		return e.cmdXadd(cmd.Args, now)
	case "XRANGE":
		return e.cmdXrange(cmd.Args, now)
	case "XREAD":
		return e.cmdXread(cmd.Args, now)
	case "MULTI":
		return e.cmdMulti(c)
	case "DISCARD":
		return e.cmdDiscard(c)
	case "EXEC":
		return e.cmdExec(c)
	case "SUBSCRIBE":
		return e.cmdSubscribe(c, cmd.Args)
	case "UNSUBSCRIBE":
		return e.cmdUnsubscribe(c, cmd.Args)
	case "PUBLISH":
		return e.cmdPublish(cmd.Args)
	case "INFO":
		return e.cmdInfo()
	case "REPLCONF":
		return e.cmdReplconf(c, cmd.Args)
	case "WAIT":
		return e.cmdWait(cmd.Args)
	default:
		return resp.Errf("ERR unknown command '%s'", strings.ToLower(cmd.Name))
	}
}

// propagateFrame builds the frame actually sent to followers for a
// successful write. It is cmd.Raw verbatim for every command except XADD:
// an XADD issued with an auto-generated id ("*" or "<ms>-*") must propagate
// the LEADER's resolved id, never the original spec, or a follower
// re-resolving "*" against its own clock would diverge from the leader.
// This resolves the open question in spec.md §9 about XADD propagation.
func (e *Engine) propagateFrame(cmd *command.Command, reply *resp.Frame) *resp.Frame {
	if cmd.Name == "XADD" {
		args := append([]string{"XADD", cmd.Args[0], reply.Str}, cmd.Args[2:]...)
		return resp.BulkStrings(args...)
	}
	return cmd.Raw
}

// scheduleGetAck is handed to Plane.Drain as the delayed GETACK callback;
// it runs without the lock held (fired from a timer goroutine) and must
// re-acquire it itself.
func (e *Engine) scheduleGetAck() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plane.SendGetAck()
}

// ApplyReplicated executes one write command received from a leader,
// bypassing dispatch's transaction/propagation machinery entirely — a
// follower never re-propagates what it applies, and MULTI/EXEC never
// crosses the wire (only the constituent writes do).
func (e *Engine) ApplyReplicated(args []string) error {
	if len(args) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	name := strings.ToUpper(args[0])
	rest := args[1:]
	now := e.clock.NowMillis()

	switch name {
	case "SET":
		return e.applySet(rest, now)
	case "INCR":
		if len(rest) < 1 {
			return errMalformed(name)
		}
		_, err := e.st.Incr(rest[0], now)
		return err
	case "RPUSH":
		if len(rest) < 2 {
			return errMalformed(name)
		}
		_, err := e.st.RPush(rest[0], toByteSlices(rest[1:]), now)
		if err == nil {
			e.cond.Broadcast()
		}
		return err
	case "LPUSH":
		if len(rest) < 2 {
			return errMalformed(name)
		}
		_, err := e.st.LPush(rest[0], toByteSlices(rest[1:]), now)
		if err == nil {
			e.cond.Broadcast()
		}
		return err
	case "LPOP":
		if len(rest) < 1 {
			return errMalformed(name)
		}
		count := 1
		if len(rest) >= 2 {
			if n, perr := parseInt(rest[1]); perr == nil {
				count = n
			}
		}
		_, err := e.st.LPop(rest[0], count, now)
		return err
	case "XADD":
		if len(rest) < 3 {
			return errMalformed(name)
		}
		_, err := e.st.XAdd(rest[0], rest[1], rest[2:], now)
		if err == nil {
			e.cond.Broadcast()
		}
		return err
	default:
		return errMalformed(name)
	}
}

// snapshotBytes renders the live store's string keys into the wire
// snapshot format, for PSYNC's full-resync payload. List and stream keys
// have no representation in this format (§4.4 defines only value type 0,
// string) and are skipped — a documented limitation, not a bug: a follower
// reconstructs them from the propagated write stream it applies afterward.
func (e *Engine) snapshotBytes() []byte {
	now := e.clock.NowMillis()
	var entries []rdb.Entry
	for _, k := range e.st.Keys(now) {
		if e.st.Type(k, now) != store.KindString {
			continue
		}
		val, ok := e.st.GetString(k, now)
		if !ok {
			continue
		}
		entries = append(entries, rdb.Entry{Key: k, Value: val})
	}
	return rdb.Dump(entries)
}
