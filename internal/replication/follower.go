package replication

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	log "github.com/sandia-minimega/minikv/pkg/minilog"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// Follower drives the client half of the handshake in spec.md §4.7 and
// then applies the leader's propagated command stream, accounting
// consumed bytes the way the leader's WAIT/GETACK protocol expects.
type Follower struct {
	conn          net.Conn
	r             *resp.Reader
	bytesConsumed int64
}

// Handshake connects to the leader and performs PING / REPLCONF
// listening-port / REPLCONF capa psync2 / PSYNC ? -1, returning the
// leader's repl id, its starting offset, and the raw snapshot payload to
// feed into the rdb loader.
func Handshake(leaderAddr string, listeningPort int) (*Follower, string, int64, []byte, error) {
	c, err := net.Dial("tcp", leaderAddr)
	if err != nil {
		return nil, "", 0, nil, fmt.Errorf("replication: dial leader: %w", err)
	}

	f := &Follower{conn: c, r: resp.NewReader(c)}

	steps := [][]string{
		{"PING"},
		{"REPLCONF", "listening-port", strconv.Itoa(listeningPort)},
		{"REPLCONF", "capa", "psync2"},
	}
	for _, args := range steps {
		if _, err := c.Write(resp.EncodeCommand(args...)); err != nil {
			c.Close()
			return nil, "", 0, nil, fmt.Errorf("replication: sending %v: %w", args, err)
		}
		if _, _, err := f.r.ReadFrame(); err != nil {
			c.Close()
			return nil, "", 0, nil, fmt.Errorf("replication: reading reply to %v: %w", args, err)
		}
	}

	if _, err := c.Write(resp.EncodeCommand("PSYNC", "?", "-1")); err != nil {
		c.Close()
		return nil, "", 0, nil, fmt.Errorf("replication: sending PSYNC: %w", err)
	}

	reply, _, err := f.r.ReadFrame()
	if err != nil {
		c.Close()
		return nil, "", 0, nil, fmt.Errorf("replication: reading FULLRESYNC: %w", err)
	}
	replID, offset, err := parseFullResync(reply)
	if err != nil {
		c.Close()
		return nil, "", 0, nil, err
	}

	payload, _, err := f.r.ReadRawBulk()
	if err != nil {
		c.Close()
		return nil, "", 0, nil, fmt.Errorf("replication: reading snapshot payload: %w", err)
	}

	return f, replID, offset, payload, nil
}

func parseFullResync(f *resp.Frame) (string, int64, error) {
	if f.Kind != resp.SimpleString || !strings.HasPrefix(f.Str, "FULLRESYNC ") {
		return "", 0, fmt.Errorf("replication: expected +FULLRESYNC, got %q", f.Str)
	}
	parts := strings.Fields(f.Str)
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("replication: malformed FULLRESYNC reply %q", f.Str)
	}
	offset, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("replication: malformed FULLRESYNC offset %q", parts[2])
	}
	return parts[1], offset, nil
}

// Apply runs the steady-state loop: read each frame from the leader,
// account its bytes, hand writes to apply(), and answer GETACK probes
// with the bytes-consumed counter as it stood BEFORE this frame, per the
// byte-accounting rule in spec.md §4.7.
func (f *Follower) Apply(apply func(args []string) error) error {
	for {
		frame, n, err := f.r.ReadFrame()
		if err != nil {
			return err
		}

		args, err := frame.StringArgs()
		if err != nil {
			log.Error("replication: non-command frame from leader: %v", err)
			f.bytesConsumed += int64(n)
			continue
		}

		if len(args) == 3 && strings.EqualFold(args[0], "REPLCONF") && strings.EqualFold(args[1], "GETACK") {
			ack := resp.EncodeCommand("REPLCONF", "ACK", strconv.FormatInt(f.bytesConsumed, 10))
			if _, err := f.conn.Write(ack); err != nil {
				return fmt.Errorf("replication: sending ACK: %w", err)
			}
			f.bytesConsumed += int64(n)
			continue
		}

		f.bytesConsumed += int64(n)

		if err := apply(args); err != nil {
			log.Error("replication: applying %v: %v", args, err)
		}
	}
}

func (f *Follower) Close() error {
	return f.conn.Close()
}
