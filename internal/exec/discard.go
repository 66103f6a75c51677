package exec

import (
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdDiscard(c *conn.State) *resp.Frame {
	if !c.TxnActive() {
		return resp.Err("ERR DISCARD without MULTI")
	}
	c.EndTxn()
	return resp.Simple("OK")
}
