package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

func (e *Engine) cmdRpush(args []string, now int64) *resp.Frame {
	n, err := e.st.RPush(args[0], toByteSlices(args[1:]), now)
	if err != nil {
		return resp.Err(err.Error())
	}
	e.cond.Broadcast()
	return resp.Int(int64(n))
}
