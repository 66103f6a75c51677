package conn

import (
	"errors"
	"io"
	"net"

	log "github.com/sandia-minimega/minikv/pkg/minilog"
	"github.com/sandia-minimega/minikv/pkg/resp"
)

// Submitter is the engine's external contract from this connection's point
// of view: hand it a parsed frame, get back the raw bytes to write. Kept as
// an interface here (rather than importing the engine package directly) so
// this package stays a leaf the engine depends on, not the reverse.
type Submitter interface {
	Submit(c *State, frame *resp.Frame) [][]byte
}

// Serve runs one connection's read/parse/execute/write cycle until the
// peer disconnects or sends unparseable bytes, per spec.md §4.8's
// "malformed frame closes the connection" rule. onConnect/onDisconnect let
// the caller register the connection for pub/sub delivery and replication
// bookkeeping without this package knowing about either.
func Serve(nc net.Conn, eng Submitter, onConnect, onDisconnect func(*State)) {
	c := New(NetSink(nc))
	defer nc.Close()

	if onConnect != nil {
		onConnect(c)
	}
	if onDisconnect != nil {
		defer onDisconnect(c)
	}

	r := resp.NewReader(nc)
	for {
		frame, _, err := r.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("conn %s: %v", c.ID, err)
			}
			return
		}

		chunks := eng.Submit(c, frame)
		for _, chunk := range chunks {
			if _, err := nc.Write(chunk); err != nil {
				log.Debug("conn %s: write: %v", c.ID, err)
				return
			}
		}
	}
}
