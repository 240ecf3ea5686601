// Package metrics defines the Prometheus collectors recorded by the swap
// coordinator and the exchange simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fusionswap"

// Swap groups the coordinator's collectors.
type Swap struct {
	Swaps            *prometheus.CounterVec
	SecretsSubmitted prometheus.Counter
	Polls            prometheus.Counter
	PollFailures     prometheus.Counter
	Duration         prometheus.Histogram
}

// NewSwap creates the coordinator collectors and registers them with reg
// when reg is non-nil.
func NewSwap(reg prometheus.Registerer) *Swap {
	m := &Swap{
		Swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "total",
			Help:      "Swaps that left the coordinator, by outcome.",
		}, []string{"outcome"}),
		SecretsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "secrets_submitted_total",
			Help:      "Secrets accepted by the exchange service.",
		}),
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "polls_total",
			Help:      "Polling iterations run while awaiting fills.",
		}),
		PollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "poll_failures_total",
			Help:      "Polling iterations that hit a transient error.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "duration_seconds",
			Help:      "Time from quote to swap exit.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Swaps, m.SecretsSubmitted, m.Polls, m.PollFailures, m.Duration)
	}
	return m
}

// Exchange groups the simulator's collectors.
type Exchange struct {
	Requests *prometheus.CounterVec
	Orders   *prometheus.GaugeVec
}

// NewExchange creates the simulator collectors and registers them with reg
// when reg is non-nil.
func NewExchange(reg prometheus.Registerer) *Exchange {
	m := &Exchange{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchangesim",
			Name:      "requests_total",
			Help:      "API requests served, by route pattern and status code.",
		}, []string{"pattern", "code"}),
		Orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "exchangesim",
			Name:      "orders",
			Help:      "Orders held by the simulator, by status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Orders)
	}
	return m
}
