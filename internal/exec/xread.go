package exec

import (
	"strconv"
	"strings"

	"github.com/sandia-minimega/minikv/internal/blocking"
	"github.com/sandia-minimega/minikv/internal/store"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// cmdXread implements "XREAD [BLOCK ms] STREAMS k1 … kn id1 … idn" per
// spec.md §4.3/§4.6, including the "$" exclusive-start-at-entry marker.
func (e *Engine) cmdXread(args []string, now int64) *resp.Frame {
	idx := 0
	blockMs := -1
	hasBlock := false
	if strings.EqualFold(args[0], "BLOCK") {
		ms, err := strconv.Atoi(args[1])
		if err != nil {
			return resp.Err("ERR timeout is not an integer or out of range")
		}
		blockMs, hasBlock = ms, true
		idx = 2
	}

	if idx >= len(args) || !strings.EqualFold(args[idx], "STREAMS") {
		return resp.Err("ERR syntax error")
	}
	rest := args[idx+1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return resp.Err("ERR Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified.")
	}
	n := len(rest) / 2
	keys := rest[:n]
	idSpecs := rest[n:]

	starts := make([]store.StreamID, n)
	for i, spec := range idSpecs {
		if spec == "$" {
			starts[i] = e.st.LastStreamIDOrZero(keys[i], now)
			continue
		}
		id, err := store.ParseID(spec)
		if err != nil {
			return resp.Err(err.Error())
		}
		starts[i] = id
	}

	check := func() (*resp.Frame, bool) {
		nowInner := e.clock.NowMillis()
		var items []*resp.Frame
		for i, k := range keys {
			entries, err := e.st.XReadSince(k, starts[i], nowInner)
			if err != nil {
				continue
			}
			if len(entries) > 0 {
				items = append(items, resp.Arr(resp.Bulk(k), xrangeFrame(entries)))
			}
		}
		if len(items) == 0 {
			return nil, false
		}
		return resp.Arr(items...), true
	}

	if !hasBlock {
		reply, ok := check()
		if !ok {
			return resp.NullBulk()
		}
		return reply
	}

	deadline := blocking.Forever
	if blockMs != 0 {
		deadline = now + int64(blockMs)
	}

	var reply *resp.Frame
	ready := blocking.Until(e.cond, &e.mu, deadline, e.clock.NowMillis, func() bool {
		r, ok := check()
		reply = r
		return ok
	})
	if !ready {
		return resp.NullBulk()
	}
	return reply
}
