package exec

import (
	"fmt"
	"strings"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

func (e *Engine) cmdInfo() *resp.Frame {
	lines := []string{"# Replication"}
	if e.nodeIsReplica {
		lines = append(lines, "role:slave")
	} else {
		lines = append(lines,
			"role:master",
			fmt.Sprintf("master_replid:%s", e.plane.ReplID),
			fmt.Sprintf("master_repl_offset:%d", e.plane.Offset()),
		)
	}
	lines = append(lines, fmt.Sprintf("connected_slaves:%d", e.plane.FollowerCount()))
	return resp.Bulk(strings.Join(lines, "\n"))
}
