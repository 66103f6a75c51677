// Package blocking centralizes the suspend/retry pattern used by BLPOP,
// XREAD BLOCK, and WAIT: release the engine's lock while waiting, wake on
// either a state-changing broadcast or a deadline timer, and recheck.
// Per spec.md §4.6/§9, a polling implementation is always correct; this
// adds condition-variable wakeups on top purely to avoid busy-looping.
package blocking

import (
	"sync"
	"time"
)

// Forever is the deadline sentinel for a timeout of 0 (wait indefinitely),
// per BLPOP/XREAD BLOCK's timeout semantics.
const Forever int64 = -1

// Until blocks, waiting on cond, until ready() returns true or
// deadlineMillis (absolute, ms since epoch) passes. mu must be held by the
// caller on entry and is held again on return; it is released internally
// while waiting. Returns true if ready() became true, false on timeout.
func Until(cond *sync.Cond, mu *sync.Mutex, deadlineMillis int64, nowMillis func() int64, ready func() bool) bool {
	if ready() {
		return true
	}

	var timer *time.Timer
	expired := false // set under mu once the deadline timer fires
	if deadlineMillis != Forever {
		d := time.Duration(deadlineMillis-nowMillis()) * time.Millisecond
		if d < 0 {
			d = 0
		}
		timer = time.AfterFunc(d, func() {
			mu.Lock()
			expired = true
			cond.Broadcast()
			mu.Unlock()
		})
		defer timer.Stop()
	}

	for !ready() {
		if deadlineMillis != Forever && (expired || nowMillis() >= deadlineMillis) {
			return false
		}
		cond.Wait()
	}
	return true
}
