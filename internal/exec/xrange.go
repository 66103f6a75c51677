package exec

import (
	"github.com/sandia-minimega/minikv/internal/store"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdXrange(args []string, now int64) *resp.Frame {
	entries, err := e.st.XRange(args[0], args[1], args[2], now)
	if err != nil {
		return resp.Err(err.Error())
	}
	return xrangeFrame(entries)
}

func xrangeFrame(entries []store.StreamEntry) *resp.Frame {
	items := make([]*resp.Frame, len(entries))
	for i, en := range entries {
		items[i] = resp.Arr(resp.Bulk(en.ID.String()), resp.BulkStrings(en.Fields...))
	}
	return resp.Arr(items...)
}
