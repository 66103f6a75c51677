// Package config resolves the CLI surface described in spec.md §6 plus the
// ambient flags cmd/minikv owns on top of it. This is explicitly "out of
// scope (external collaborators)" for the core per spec.md §1 — the core
// only ever sees the resolved values, never a flag name.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sandia-minimega/minikv/pkg/minilog"
)

type Config struct {
	Port    int
	Dir     string
	DBFile  string
	ReplicaOfHost string
	ReplicaOfPort int
	IsReplica     bool

	MetricsAddr string
	MaxConns    int
}

// Parse loads an optional .env file into the process environment
// (silently ignored if absent, since spec.md §6 requires no environment
// variables) and then parses the command-line flags. No flag takes its
// value from the environment, so .env entries do not change the returned
// Config.
func Parse(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("config: loading .env: %v", err)
	}

	fs := flag.NewFlagSet("minikv", flag.ContinueOnError)
	port := fs.Int("port", 6379, "TCP port to listen on")
	replicaof := fs.String("replicaof", "", `run as a follower of "<host> <port>"`)
	dir := fs.String("dir", ".", "directory containing the snapshot file")
	dbfilename := fs.String("dbfilename", "dump.rdb", "snapshot file name")
	metricsAddr := fs.String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	maxConns := fs.Int("max-conns", 10000, "maximum concurrent client connections")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        *port,
		Dir:         *dir,
		DBFile:      *dbfilename,
		MetricsAddr: *metricsAddr,
		MaxConns:    *maxConns,
	}

	if *replicaof != "" {
		parts := strings.Fields(*replicaof)
		if len(parts) != 2 {
			return nil, errBadReplicaof(*replicaof)
		}
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errBadReplicaof(*replicaof)
		}
		cfg.IsReplica = true
		cfg.ReplicaOfHost = parts[0]
		cfg.ReplicaOfPort = p
	}

	return cfg, nil
}
