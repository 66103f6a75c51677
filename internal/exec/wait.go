package exec

import (
	"strconv"

	"github.com/sandia-minimega/minikv/internal/blocking"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdWait blocks until ack_count reaches n or the deadline passes. A
// timeout of 0 is treated as "wait indefinitely", matching BLPOP/XREAD
// BLOCK's convention — the spec leaves WAIT's own zero-timeout behavior
// unstated, so this follows the same rule for consistency.
func (e *Engine) cmdWait(args []string) *resp.Frame {
	n, err1 := strconv.Atoi(args[0])
	timeoutMs, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		return resp.Err("ERR value is not an integer or out of range")
	}

	deadline := blocking.Forever
	if timeoutMs != 0 {
		deadline = e.clock.NowMillis() + timeoutMs
	}

	count := e.plane.WaitForAcks(n, deadline)
	return resp.Int(int64(count))
}
