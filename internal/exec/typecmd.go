package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

func (e *Engine) cmdType(args []string, now int64) *resp.Frame {
	return resp.Simple(e.st.Type(args[0], now).String())
}
