package exec

import (
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdSubscribe(c *conn.State, args []string) *resp.Frame {
	ch := args[0]
	n := c.Subscribe(ch)
	if e.channels[ch] == nil {
		e.channels[ch] = make(map[string]bool)
	}
	e.channels[ch][c.ID] = true
	return resp.Arr(resp.Bulk("subscribe"), resp.Bulk(ch), resp.Int(int64(n)))
}

func (e *Engine) cmdUnsubscribe(c *conn.State, args []string) *resp.Frame {
	ch := args[0]
	n := c.Unsubscribe(ch)
	if subs, ok := e.channels[ch]; ok {
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(e.channels, ch)
		}
	}
	return resp.Arr(resp.Bulk("unsubscribe"), resp.Bulk(ch), resp.Int(int64(n)))
}

// cmdPublish delivers to every currently-registered subscriber's sink and
// replies with how many actually received it.
func (e *Engine) cmdPublish(args []string) *resp.Frame {
	ch, msg := args[0], args[1]
	var delivered int64
	for id := range e.channels[ch] {
		target, ok := e.connections[id]
		if !ok {
			continue
		}
		frame := resp.Arr(resp.Bulk("message"), resp.Bulk(ch), resp.Bulk(msg))
		if _, err := target.Sink.Write(resp.Encode(frame)); err == nil {
			delivered++
		}
	}
	return resp.Int(delivered)
}
