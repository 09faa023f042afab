// Package metrics keeps process counters in a prometheus registry. There is no
// HTTP endpoint; the registry is dumped to a textfile on exit when configured,
// which node_exporter's textfile collector can pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry = prometheus.NewRegistry()

	saves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concertdb",
		Name:      "saves_total",
		Help:      "Records saved, by kind and result.",
	}, []string{"kind", "result"})

	loads = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "concertdb",
		Name:      "load_seconds",
		Help:      "Time spent loading a listing from storage.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"listing"})

	backups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concertdb",
		Name:      "backups_total",
		Help:      "Backup operations, by driver, operation and result.",
	}, []string{"driver", "op", "result"})
)

func init() {
	Registry.MustRegister(saves, loads, backups)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSave counts one saved record of the given kind.
func ObserveSave(kind string, err error) {
	saves.WithLabelValues(kind, result(err)).Inc()
}

// ObserveLoad records how long loading a listing took.
func ObserveLoad(listing string, start time.Time) {
	loads.WithLabelValues(listing).Observe(time.Since(start).Seconds())
}

// ObserveBackup counts one backup push/pull/list.
func ObserveBackup(driver, op string, err error) {
	backups.WithLabelValues(driver, op, result(err)).Inc()
}

// WriteTextfile writes the registry in text exposition format. An empty path
// is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, Registry)
}
