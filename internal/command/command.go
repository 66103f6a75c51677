// Package command parses a client's framed array into a typed Command and
// validates arity before any executor runs, per spec.md §4.2.
package command

import (
	"fmt"
	"strings"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

// Command is a dispatched, not-yet-executed client command: a verb and its
// string arguments, plus the original frame (needed verbatim for
// transaction queueing and for write-command propagation to followers).
type Command struct {
	Name string
	Args []string
	Raw  *resp.Frame
}

// spec describes one verb's shape: how many args beyond the name it takes.
// -1 for Max means unbounded.
type spec struct {
	Min, Max int
	IsWrite  bool
}

// specs is the arity/write-classification table referenced by spec.md's
// command dispatch and replication sections. Executors still validate
// argument *types* (e.g. that PX's operand parses as an integer); this
// table only gates argument *count*.
var specs = map[string]spec{
	"PING":        {0, 0, false},
	"ECHO":        {1, 1, false},
	"SET":         {2, 4, true},
	"GET":         {1, 1, false},
	"INCR":        {1, 1, true},
	"TYPE":        {1, 1, false},
	"KEYS":        {1, 1, false},
	"RPUSH":       {2, -1, true},
	"LPUSH":       {2, -1, true},
	"LLEN":        {1, 1, false},
	"LPOP":        {1, 2, true},
	"LRANGE":      {3, 3, false},
	"BLPOP":       {2, 2, false},
	"XADD":        {3, -1, true},
	"XRANGE":      {3, 3, false},
	"XREAD":       {3, -1, false},
	"MULTI":       {0, 0, false},
	"DISCARD":     {0, 0, false},
	"EXEC":        {0, 0, false},
	"SUBSCRIBE":   {1, 1, false},
	"UNSUBSCRIBE": {1, 1, false},
	"PUBLISH":     {2, 2, false},
	"INFO":        {0, 1, false},
	"REPLCONF":    {2, -1, false},
	"PSYNC":       {2, 2, false},
	"WAIT":        {2, 2, false},
}

// IsWriteCommand reports whether name is in the minimal set propagated to
// followers, per spec.md §4.7: SET, INCR, RPUSH, LPUSH, LPOP, XADD.
func IsWriteCommand(name string) bool {
	s, ok := specs[strings.ToUpper(name)]
	return ok && s.IsWrite
}

// Dispatch parses a client array frame into a Command and validates
// arity. Unknown commands and arity mismatches are argument errors (the
// connection continues); only a non-array top-level frame, an empty array,
// or an array with any element that isn't a bulk string, is a
// dispatch-level error —
// malformed bytes below the frame level are caught earlier by the wire
// codec and close the connection instead.
func Dispatch(f *resp.Frame) (*Command, error) {
	args, err := f.StringArgs()
	if err != nil || len(args) == 0 {
		return nil, fmt.Errorf("ERR Protocol error: expected array of bulk strings")
	}

	name := strings.ToUpper(args[0])
	s, ok := specs[name]
	if !ok {
		return nil, fmt.Errorf("ERR unknown command '%s'", args[0])
	}

	rest := args[1:]
	if len(rest) < s.Min || (s.Max >= 0 && len(rest) > s.Max) {
		return nil, fmt.Errorf("ERR wrong number of arguments for '%s' command", strings.ToLower(name))
	}

	return &Command{Name: name, Args: rest, Raw: f}, nil
}
