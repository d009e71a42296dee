package rpcclient

import (
	"time"

	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	rpcTimes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "RPC client call time",
			Name:      "rpc_client_call_time",
			Namespace: "neargo",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method"},
	)
	rpcErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of failed RPC client calls",
			Name:      "rpc_client_errors_total",
			Namespace: "neargo",
		},
		[]string{"method", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		rpcTimes,
		rpcErrors,
	)
}

func addReqTimeMetric(method string, t time.Duration, err error) {
	rpcTimes.WithLabelValues(method).Observe(t.Seconds())
	if err != nil {
		rpcErrors.WithLabelValues(method, neterr.KindOf(err).String()).Inc()
	}
}
