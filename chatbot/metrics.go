package chatbot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal counts answered questions by the resolver step that answered them.
	// Labels: path (exact, similar, transform, blacklist)
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Total answered questions by resolution path",
	}, []string{"path"})

	// nearestDistance tracks how far similarity-fallback questions were from the stored question.
	nearestDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Subsystem: "resolver",
		Name:      "nearest_distance",
		Help:      "Edit distance between input and the nearest stored question",
		Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
	})

	// mutationsTotal counts add/remove calls.
	// Labels: op (add, remove), result (changed, unchanged, deleted, error)
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Total answer mutations by operation and result",
	}, []string{"op", "result"})

	// operationDuration measures service calls end to end, store round trips included.
	// Labels: op (ask, teach, forget, answers, notify), status (ok, error)
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Service operation latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"op", "status"})
)

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func mutationResult(m Mutation, err error) string {
	switch {
	case err != nil:
		return "error"
	case m.Deleted:
		return "deleted"
	case m.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}
