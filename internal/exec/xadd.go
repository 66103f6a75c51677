package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

func (e *Engine) cmdXadd(args []string, now int64) *resp.Frame {
	key, idSpec := args[0], args[1]
	fields := args[2:]
	if len(fields) == 0 || len(fields)%2 != 0 {
		return resp.Err("ERR wrong number of arguments for 'xadd' command")
	}

	id, err := e.st.XAdd(key, idSpec, fields, now)
	if err != nil {
		return resp.Err(err.Error())
	}
	e.cond.Broadcast()
	return resp.Bulk(id.String())
}
