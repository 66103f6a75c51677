package exec

import (
	"strconv"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdLrange(args []string, now int64) *resp.Frame {
	start, err1 := strconv.Atoi(args[1])
	end, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return resp.Err("ERR value is not an integer or out of range")
	}
	vals, err := e.st.LRange(args[0], start, end, now)
	if err != nil {
		return resp.Err(err.Error())
	}
	return bulkArray(vals)
}
