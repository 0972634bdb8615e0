package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploy_config",
		Name:      "config_loads_total",
		Help:      "Deploy config builds by result (ok, failed).",
	}, []string{"result"})

	ConfigIssues = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploy_config",
		Name:      "config_issues_total",
		Help:      "Non-fatal discrepancies found while building the config, by kind.",
	}, []string{"kind"})

	NetworkProbes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploy_config",
		Name:      "network_probes_total",
		Help:      "Endpoint chain id probes by network and result (ok, mismatch, error, cached).",
	}, []string{"network", "result"})

	NetworkProbeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deploy_config",
		Name:      "network_probe_duration_seconds",
		Help:      "Latency of endpoint chain id probes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers the collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		MustRegisterWith(prometheus.DefaultRegisterer)
	})
}

// MustRegisterWith registers the collectors with reg.
func MustRegisterWith(reg prometheus.Registerer) {
	reg.MustRegister(ConfigLoads, ConfigIssues, NetworkProbes, NetworkProbeDuration)
}
