package exec

import (
	"fmt"
	"strconv"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

func bulkArray(vals [][]byte) *resp.Frame {
	items := make([]*resp.Frame, len(vals))
	for i, v := range vals {
		items[i] = resp.BulkBytes(v)
	}
	return resp.Arr(items...)
}

func toByteSlices(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func errMalformed(command string) error {
	return fmt.Errorf("replication: malformed propagated %s", command)
}
