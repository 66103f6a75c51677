package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

func (e *Engine) cmdGet(args []string, now int64) *resp.Frame {
	val, ok := e.st.GetString(args[0], now)
	if !ok {
		return resp.NullBulk()
	}
	return resp.BulkBytes(val)
}
