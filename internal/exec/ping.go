package exec

import (
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdPing replies +PONG normally, or the two-element ["pong", ""] array
// when the connection has at least one active subscription, per spec.md
// §4.3 — subscribed clients in a pub/sub-only context expect array replies.
func (e *Engine) cmdPing(c *conn.State) *resp.Frame {
	if c.IsSubscribed() {
		return resp.Arr(resp.Bulk("pong"), resp.Bulk(""))
	}
	return resp.Simple("PONG")
}
