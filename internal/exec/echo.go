package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

func (e *Engine) cmdEcho(args []string) *resp.Frame {
	return resp.Simple(args[0])
}
