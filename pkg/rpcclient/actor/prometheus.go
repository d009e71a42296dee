package actor

import (
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of submitted transactions by outcome",
			Name:      "submissions_total",
			Namespace: "neargo",
		},
		[]string{"state"},
	)
	submissionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of failed submissions by step and error kind",
			Name:      "submission_errors_total",
			Namespace: "neargo",
		},
		[]string{"step", "kind"},
	)
	gasBurnt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Total gas burnt by submitted transactions",
			Name:      "gas_burnt_total",
			Namespace: "neargo",
		},
	)
)

func init() {
	prometheus.MustRegister(
		submissions,
		submissionErrors,
		gasBurnt,
	)
}

func observeResult(r *Result) {
	submissions.WithLabelValues(r.State.String()).Inc()
	gasBurnt.Add(float64(r.GasBurnt))
}

func observeError(err error) {
	submissionErrors.WithLabelValues(neterr.StepOf(err).String(), neterr.KindOf(err).String()).Inc()
}
