// Package metrics exposes Prometheus gauges/counters mirroring engine
// state for observability. Per SPEC_FULL.md §4.11 these are purely
// observational: nothing in the core consults them, and WAIT's semantics
// remain governed only by ack_count.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sandia-minimega/minikv/pkg/minilog"
)

var (
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minikv_commands_total",
		Help: "Commands processed, by verb.",
	}, []string{"command"})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minikv_connected_clients",
		Help: "Currently open client connections.",
	})

	ReplicaAckCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minikv_replica_ack_count",
		Help: "Followers that acknowledged the most recent write broadcast.",
	})

	ReplicationOffsetBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minikv_replication_offset_bytes",
		Help: "Leader's cumulative propagated write byte count.",
	})
)

// Serve starts the metrics HTTP listener in the background. A non-nil
// error means the listener could not be created at all; failures after
// that are logged, not fatal — metrics are observational, not a reason to
// bring the server down.
func Serve(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	ln, err := newListener(addr)
	if err != nil {
		return err
	}
	go func() {
		if err := http.Serve(ln, mux); err != nil {
			log.Error("metrics: server exited: %v", err)
		}
	}()
	return nil
}
