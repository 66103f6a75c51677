package exec

import "github.com/sandia-minimega/minikv/pkg/resp"

// cmdKeys only implements the "*" catch-all pattern the core requires, per
// spec.md §4.3/§9's open question on glob matching: any other pattern
// simply matches nothing, rather than erroring.
func (e *Engine) cmdKeys(args []string, now int64) *resp.Frame {
	if args[0] != "*" {
		return resp.Arr()
	}
	return resp.BulkStrings(e.st.Keys(now)...)
}
