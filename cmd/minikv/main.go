// Command minikv runs the datastore server: it resolves configuration,
// loads the on-disk snapshot (or joins a leader via replication), and then
// accepts client connections until terminated.
package main

import (
	"bytes"
	"context"
	"fmt"
	stdlog "log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/net/netutil"

	"github.com/sandia-minimega/minikv/internal/config"
	"github.com/sandia-minimega/minikv/internal/conn"
	"github.com/sandia-minimega/minikv/internal/exec"
	"github.com/sandia-minimega/minikv/internal/metrics"
	"github.com/sandia-minimega/minikv/internal/rdb"
	"github.com/sandia-minimega/minikv/internal/replication"
	"github.com/sandia-minimega/minikv/internal/store"
	log "github.com/sandia-minimega/minikv/pkg/minilog"
)

func main() {
	log.AddLogger("stderr", stdlog.New(os.Stderr, "", 0), log.INFO, true)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal("config: %v", err)
	}

	engine := exec.New(store.SystemClock{})
	engine.SetNodeRole(cfg.IsReplica)

	loadSnapshot(engine, cfg)

	if err := metrics.Serve(cfg.MetricsAddr); err != nil {
		log.Fatal("metrics: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if _, err := engine.StartExpirySweep(sweepCtx); err != nil {
		log.Fatal("expiry sweep: %v", err)
	}

	if cfg.IsReplica {
		go runFollower(engine, cfg)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		log.Fatal("listen: %v", err)
	}
	ln = netutil.LimitListener(ln, cfg.MaxConns)
	log.Info("minikv listening on :%d (max-conns=%d)", cfg.Port, cfg.MaxConns)

	go acceptLoop(ln, engine)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("minikv shutting down")
	ln.Close()
}

func acceptLoop(ln net.Listener, engine *exec.Engine) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Info("accept loop exiting: %v", err)
			return
		}
		go conn.Serve(nc, engine, engine.RegisterConnection, engine.UnregisterConnection)
	}
}

func loadSnapshot(engine *exec.Engine, cfg *config.Config) {
	path := filepath.Join(cfg.Dir, cfg.DBFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Info("snapshot %s not found, starting empty", path)
		return
	}
	if err != nil {
		log.Fatal("snapshot: opening %s: %v", path, err)
	}
	defer f.Close()

	entries, err := rdb.Load(f)
	if err != nil {
		log.Fatal("snapshot: %s is malformed: %v", path, err)
	}
	engine.LoadSnapshot(entries)
	log.Info("snapshot %s loaded: %d keys", path, len(entries))
}

func runFollower(engine *exec.Engine, cfg *config.Config) {
	leaderAddr := fmt.Sprintf("%s:%d", cfg.ReplicaOfHost, cfg.ReplicaOfPort)
	follower, replID, offset, payload, err := replication.Handshake(leaderAddr, cfg.Port)
	if err != nil {
		log.Fatal("replication: handshake with %s: %v", leaderAddr, err)
	}
	log.Info("replication: synced with %s (repl_id=%s offset=%d)", leaderAddr, replID, offset)

	entries, err := rdb.Load(bytes.NewReader(payload))
	if err != nil {
		log.Fatal("replication: malformed snapshot from leader: %v", err)
	}
	engine.LoadSnapshot(entries)

	if err := follower.Apply(engine.ApplyReplicated); err != nil {
		log.Error("replication: connection to leader lost: %v", err)
	}
}
