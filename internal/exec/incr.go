package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

func (e *Engine) cmdIncr(args []string, now int64) *resp.Frame {
	n, err := e.st.Incr(args[0], now)
	if err != nil {
		return resp.Err(err.Error())
	}
	return resp.Int(n)
}
