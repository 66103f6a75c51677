package exec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

// parseSetArgs parses "k v [PX ms]", shared by the client-facing executor
// and the follower-side replicated apply path so both interpret a SET the
// same way.
func parseSetArgs(args []string) (key string, val []byte, pxMillis int64, hasTTL bool, err error) {
	key, val = args[0], []byte(args[1])
	if len(args) == 2 {
		return key, val, 0, false, nil
	}
	if len(args) != 4 || !strings.EqualFold(args[2], "PX") {
		return "", nil, 0, false, fmt.Errorf("ERR syntax error")
	}
	px, perr := strconv.ParseInt(args[3], 10, 64)
	if perr != nil {
		return "", nil, 0, false, fmt.Errorf("ERR value is not an integer or out of range")
	}
	return key, val, px, true, nil
}

func (e *Engine) cmdSet(args []string, now int64) *resp.Frame {
	key, val, px, hasTTL, err := parseSetArgs(args)
	if err != nil {
		return resp.Err(err.Error())
	}
	e.st.SetString(key, val, px, hasTTL, now)
	return resp.Simple("OK")
}

func (e *Engine) applySet(args []string, now int64) error {
	key, val, px, hasTTL, err := parseSetArgs(args)
	if err != nil {
		return err
	}
	e.st.SetString(key, val, px, hasTTL, now)
	return nil
}
