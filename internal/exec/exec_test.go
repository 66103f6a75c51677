package exec

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/internal/store"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// memSink is a conn.Sink backed by an in-memory buffer, safe for
// concurrent writes from PUBLISH/replication delivery and reads from tests.
type memSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (m *memSink) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

func (m *memSink) frames(t *testing.T) []*resp.Frame {
	t.Helper()
	m.mu.Lock()
	data := append([]byte(nil), m.buf.Bytes()...)
	m.mu.Unlock()

	var out []*resp.Frame
	pos := 0
	for pos < len(data) {
		f, n, err := resp.Parse(data, pos)
		require.NoError(t, err)
		out = append(out, f)
		pos += n
	}
	return out
}

func newTestEngine() (*Engine, *store.FakeClock) {
	clock := store.NewFakeClock(1_700_000_000_000)
	return New(clock), clock
}

func submitCmd(e *Engine, c *conn.State, args ...string) *resp.Frame {
	chunks := e.Submit(c, resp.BulkStrings(args...))
	if len(chunks) == 0 {
		return nil
	}
	f, _, err := resp.Parse(chunks[0], 0)
	if err != nil {
		panic(err)
	}
	return f
}

func TestPingEcho(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	require.Equal(t, resp.Simple("PONG"), submitCmd(e, c, "PING"))
	require.Equal(t, resp.Simple("hello"), submitCmd(e, c, "ECHO", "hello"))
}

func TestSetGetWithExpiry(t *testing.T) {
	e, clock := newTestEngine()
	c := conn.New(&memSink{})

	require.Equal(t, resp.Simple("OK"), submitCmd(e, c, "SET", "k", "v", "PX", "100"))
	require.Equal(t, resp.BulkBytes([]byte("v")), submitCmd(e, c, "GET", "k"))

	clock.Advance(200 * time.Millisecond)
	require.True(t, submitCmd(e, c, "GET", "k").IsNull())
}

func TestIncrCreateAndError(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	require.Equal(t, resp.Int(1), submitCmd(e, c, "INCR", "counter"))
	require.Equal(t, resp.Int(2), submitCmd(e, c, "INCR", "counter"))

	submitCmd(e, c, "SET", "str", "notanumber")
	reply := submitCmd(e, c, "INCR", "str")
	require.Equal(t, resp.Error, reply.Kind)
	require.Contains(t, reply.Str, "not an integer")
}

func TestRpushLrangeAndLlenWrongType(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	require.Equal(t, resp.Int(3), submitCmd(e, c, "RPUSH", "k", "a", "b", "c"))
	got := submitCmd(e, c, "LRANGE", "k", "0", "-1")
	require.Equal(t, resp.Array, got.Kind)
	require.Len(t, got.Items, 3)

	submitCmd(e, c, "SET", "s", "x")
	require.Equal(t, resp.Int(0), submitCmd(e, c, "LLEN", "s"))
}

func TestLpushOrder(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	submitCmd(e, c, "LPUSH", "k", "a", "b", "c")
	got := submitCmd(e, c, "LRANGE", "k", "0", "-1")
	require.Equal(t, "c", got.Items[0].Str)
	require.Equal(t, "b", got.Items[1].Str)
	require.Equal(t, "a", got.Items[2].Str)
}

func TestTransactionAtomicity(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	require.Equal(t, resp.Simple("OK"), submitCmd(e, c, "MULTI"))
	require.Equal(t, resp.Simple("QUEUED"), submitCmd(e, c, "SET", "foo", "41"))
	require.Equal(t, resp.Simple("QUEUED"), submitCmd(e, c, "INCR", "foo"))

	got := submitCmd(e, c, "EXEC")
	require.Equal(t, resp.Array, got.Kind)
	require.Equal(t, resp.Simple("OK"), got.Items[0])
	require.Equal(t, resp.Int(42), got.Items[1])
}

func TestNestedMultiErrors(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	submitCmd(e, c, "MULTI")
	reply := submitCmd(e, c, "MULTI")
	require.Equal(t, resp.Error, reply.Kind)
	submitCmd(e, c, "DISCARD")
}

func TestExecWithoutMultiErrors(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	reply := submitCmd(e, c, "EXEC")
	require.Equal(t, resp.Error, reply.Kind)
	require.Contains(t, reply.Str, "EXEC without MULTI")
}

func TestXaddOrderingErrors(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	reply := submitCmd(e, c, "XADD", "s", "0-1", "a", "1")
	require.Equal(t, "0-1", reply.Str)

	zero := submitCmd(e, c, "XADD", "s2", "0-0", "a", "1")
	require.Equal(t, resp.Error, zero.Kind)
	require.Contains(t, zero.Str, "greater than 0-0")

	outOfOrder := submitCmd(e, c, "XADD", "s", "0-1", "a", "1")
	require.Equal(t, resp.Error, outOfOrder.Kind)
	require.Contains(t, outOfOrder.Str, "equal or smaller")
}

func TestXreadDollarThenBlockWakesOnXadd(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})
	submitCmd(e, c, "XADD", "s", "1-1", "a", "1")

	reader := conn.New(&memSink{})
	done := make(chan *resp.Frame, 1)
	go func() {
		done <- submitCmd(e, reader, "XREAD", "BLOCK", "0", "STREAMS", "s", "$")
	}()

	// give the reader goroutine time to register and start waiting
	time.Sleep(20 * time.Millisecond)
	submitCmd(e, c, "XADD", "s", "2-1", "b", "2")

	select {
	case reply := <-done:
		require.Equal(t, resp.Array, reply.Kind)
		require.Len(t, reply.Items, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("XREAD BLOCK did not wake up after XADD")
	}
}

func TestBlpopFIFOFairness(t *testing.T) {
	e, _ := newTestEngine()
	c1 := conn.New(&memSink{})
	c2 := conn.New(&memSink{})

	order := make(chan string, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		r := submitCmd(e, c1, "BLPOP", "q", "0")
		if !r.IsNull() {
			order <- "c1"
		}
	}()
	time.Sleep(10 * time.Millisecond)
	go func() {
		defer wg.Done()
		r := submitCmd(e, c2, "BLPOP", "q", "0")
		if !r.IsNull() {
			order <- "c2"
		}
	}()
	time.Sleep(10 * time.Millisecond)

	other := conn.New(&memSink{})
	submitCmd(e, other, "RPUSH", "q", "v1")
	submitCmd(e, other, "RPUSH", "q", "v2")

	wg.Wait()
	close(order)
	var got []string
	for v := range order {
		got = append(got, v)
	}
	require.Equal(t, []string{"c1", "c2"}, got)
}

func TestBlpopTimeout(t *testing.T) {
	e, clock := newTestEngine()
	_ = clock
	c := conn.New(&memSink{})

	reply := submitCmd(e, c, "BLPOP", "nokey", "0.05")
	require.True(t, reply.IsNull())
}

func TestPubSubDelivery(t *testing.T) {
	e, _ := newTestEngine()
	sub := &memSink{}
	subConn := conn.New(sub)
	pub := conn.New(&memSink{})
	e.RegisterConnection(subConn)

	reply := submitCmd(e, subConn, "SUBSCRIBE", "news")
	require.Equal(t, "subscribe", reply.Items[0].Str)

	n := submitCmd(e, pub, "PUBLISH", "news", "hello")
	require.Equal(t, resp.Int(1), n)

	frames := sub.frames(t)
	require.Len(t, frames, 1) // only the message; the subscribe ack was returned by Submit
	require.Equal(t, "message", frames[0].Items[0].Str)
	require.Equal(t, "hello", frames[0].Items[2].Str)
}

func TestWaitWithNoFollowersReturnsImmediately(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	reply := submitCmd(e, c, "WAIT", "0", "100")
	require.Equal(t, resp.Int(0), reply)
}

func TestReplconfAckIsSilent(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})

	chunks := e.Submit(c, resp.BulkStrings("REPLCONF", "ACK", "10"))
	require.Empty(t, chunks)
	require.Equal(t, 1, e.plane.AckCount())
}

func TestApplyReplicatedMirrorsWrites(t *testing.T) {
	e, _ := newTestEngine()

	require.NoError(t, e.ApplyReplicated([]string{"SET", "k", "v"}))
	require.NoError(t, e.ApplyReplicated([]string{"RPUSH", "list", "a", "b"}))

	c := conn.New(&memSink{})
	require.Equal(t, resp.BulkBytes([]byte("v")), submitCmd(e, c, "GET", "k"))
	require.Equal(t, resp.Int(2), submitCmd(e, c, "LLEN", "list"))
}

func TestKeysOnlyStar(t *testing.T) {
	e, _ := newTestEngine()
	c := conn.New(&memSink{})
	submitCmd(e, c, "SET", "a", "1")

	all := submitCmd(e, c, "KEYS", "*")
	require.Len(t, all.Items, 1)

	none := submitCmd(e, c, "KEYS", "a*")
	require.Empty(t, none.Items)
}
