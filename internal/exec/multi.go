package exec

import (
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdMulti(c *conn.State) *resp.Frame {
	if !c.BeginTxn() {
		return resp.Err("ERR MULTI calls can not be nested")
	}
	return resp.Simple("OK")
}
