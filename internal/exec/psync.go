package exec

import (
	"fmt"

	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdPsync answers the replication handshake's final step: a +FULLRESYNC
// reply followed immediately by the raw snapshot payload (spec.md §4.1's
// one CRLF-less deviation), then joins the connection to the followers set.
func (e *Engine) cmdPsync(c *conn.State, args []string) [][]byte {
	full := resp.Encode(resp.Simple(fmt.Sprintf("FULLRESYNC %s %d", e.plane.ReplID, e.plane.Offset())))
	snapshot := resp.EncodeRawBulk(e.snapshotBytes())

	c.SetReplica(true)
	e.plane.RegisterFollower(c.ID, c.Sink)

	return [][]byte{full, snapshot}
}
