package exec

import (
	"github.com/sandia-minimega/minikv/internal/command"
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdExec replays a transaction's queued commands "as if issued outside
// the transaction" (spec.md §4.3), including per-command write
// propagation, all still under the single lock Submit already holds — this
// is what gives EXEC atomicity relative to other connections (spec.md §8's
// MULTI atomicity property).
func (e *Engine) cmdExec(c *conn.State) *resp.Frame {
	if !c.TxnActive() {
		return resp.Err("ERR EXEC without MULTI")
	}
	raws := c.EndTxn()

	replies := make([]*resp.Frame, 0, len(raws))
	wrote := false

	for _, raw := range raws {
		frame, _, err := resp.Parse(raw, 0)
		if err != nil {
			replies = append(replies, resp.Err("ERR Protocol error"))
			continue
		}
		qcmd, err := command.Dispatch(frame)
		if err != nil {
			replies = append(replies, resp.Err(err.Error()))
			continue
		}

		reply := e.execute(c, qcmd)
		replies = append(replies, reply)

		if command.IsWriteCommand(qcmd.Name) && reply != nil && reply.Kind != resp.Error {
			e.plane.AppendWrite(resp.Encode(e.propagateFrame(qcmd, reply)))
			wrote = true
		}
	}

	if wrote {
		e.plane.Drain(e.scheduleGetAck)
	}

	return resp.Arr(replies...)
}
