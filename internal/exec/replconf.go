package exec

import (
	"strings"

	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdReplconf handles the sub-verbs a leader receives FROM a connecting
// follower. REPLCONF GETACK is the opposite direction (leader to follower)
// and is handled entirely inside replication.Follower.Apply, never here.
// REPLCONF ACK has no reply at all — the leader just records it.
func (e *Engine) cmdReplconf(c *conn.State, args []string) *resp.Frame {
	if len(args) < 1 {
		return resp.Err("ERR wrong number of arguments for 'replconf' command")
	}
	switch strings.ToUpper(args[0]) {
	case "LISTENING-PORT":
		if len(args) >= 2 {
			c.ReplicaListeningPort = args[1]
		}
		return resp.Simple("OK")
	case "CAPA":
		return resp.Simple("OK")
	case "ACK":
		if len(args) >= 2 {
			e.plane.RecordAck()
		}
		return nil
	default:
		return resp.Simple("OK")
	}
}
