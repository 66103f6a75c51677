package exec

import (
	"strconv"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdLpop(args []string, now int64) *resp.Frame {
	key := args[0]

	if len(args) == 1 {
		vals, err := e.st.LPop(key, 1, now)
		if err != nil {
			return resp.Err(err.Error())
		}
		if len(vals) == 0 {
			return resp.NullBulk()
		}
		return resp.BulkBytes(vals[0])
	}

	count, err := strconv.Atoi(args[1])
	if err != nil {
		return resp.Err("ERR value is not an integer or out of range")
	}

	vals, err := e.st.LPop(key, count, now)
	if err != nil {
		return resp.Err(err.Error())
	}
	if count == 1 {
		if len(vals) == 0 {
			return resp.NullBulk()
		}
		return resp.BulkBytes(vals[0])
	}
	return bulkArray(vals)
}
