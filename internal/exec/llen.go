package exec

import (
	"github.com/sandia-minimega/minikv/internal/store"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdLlen follows spec.md §4.3's literal wording: a key of the wrong
// variant replies 0, not a type error, unlike every other list operation.
func (e *Engine) cmdLlen(args []string, now int64) *resp.Frame {
	n, err := e.st.LLen(args[0], now)
	if err != nil {
		if _, ok := err.(*store.TypeError); ok {
			return resp.Int(0)
		}
		return resp.Err(err.Error())
	}
	return resp.Int(int64(n))
}
