package exec

import (
	"strconv"

	"github.com/sandia-minimega/minikv/internal/blocking"
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdBlpop implements spec.md §4.6's FIFO wait-queue protocol. It is
// called with the engine lock already held (by Submit); blocking.Until
// releases it internally while waiting and reacquires it before returning.
func (e *Engine) cmdBlpop(c *conn.State, args []string, now int64) *resp.Frame {
	key := args[0]

	timeoutSec, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return resp.Err("ERR timeout is not a float or out of range")
	}

	deadline := blocking.Forever
	if timeoutSec != 0 {
		deadline = now + int64(timeoutSec*1000)
	}

	if err := e.st.EnsureListShell(key, now); err != nil {
		return resp.Err(err.Error())
	}
	if err := e.st.EnqueueWaiter(key, c.ID, now); err != nil {
		return resp.Err(err.Error())
	}

	var val []byte
	ready := blocking.Until(e.cond, &e.mu, deadline, e.clock.NowMillis, func() bool {
		v, ok := e.st.TryServeWaiter(key, c.ID)
		if !ok {
			return false
		}
		val = v
		return true
	})

	// Either way this caller has left the wait queue, so whoever is now at
	// its front must recheck.
	defer e.cond.Broadcast()
	if !ready {
		e.st.RemoveWaiter(key, c.ID)
		return resp.NullBulk()
	}
	return resp.Arr(resp.Bulk(key), resp.BulkBytes(val))
}
