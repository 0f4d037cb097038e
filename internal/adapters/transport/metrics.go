package transport

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests   *prometheus.CounterVec
	classified *prometheus.CounterVec
}

// NewMetrics registers the interceptor counters on reg. Counters that are
// already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adminkit",
		Name:      "requests_total",
		Help:      "Outbound resource requests by method and status class.",
	}, []string{"method", "status_class"}))
	if err != nil {
		return nil, err
	}

	classified, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adminkit",
		Name:      "classified_errors_total",
		Help:      "Failed requests by effective status after classification.",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{requests: requests, classified: classified}, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if ok {
				return existing, nil
			}
		}
		return nil, err
	}

	return vec, nil
}

func (m *Metrics) observeRequest(method string, status int) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, statusClass(status)).Inc()
}

func (m *Metrics) observeClassified(status int) {
	if m == nil {
		return
	}

	m.classified.WithLabelValues(strconv.Itoa(status)).Inc()
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}

	return strconv.Itoa(status/100) + "xx"
}
