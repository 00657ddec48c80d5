package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records contract lifecycle metrics.
type Recorder interface {
	Transition(from, to string)
	AvailabilityConflict()
	EligibilityRejected(reason string)
	TxRetry()
}

// Prometheus is a Recorder backed by prometheus collectors.
type Prometheus struct {
	transitions *prometheus.CounterVec
	conflicts   prometheus.Counter
	ineligible  *prometheus.CounterVec
	retries     prometheus.Counter
	gatherer    prometheus.Gatherer
}

// NewPrometheus registers the rental collectors on reg.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	p := &Prometheus{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rental",
			Name:      "contract_transitions_total",
			Help:      "Contract state transitions by source and target state.",
		}, []string{"from", "to"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rental",
			Name:      "availability_conflicts_total",
			Help:      "Booking attempts rejected because the car was already occupied.",
		}),
		ineligible: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rental",
			Name:      "eligibility_rejections_total",
			Help:      "Booking attempts rejected by the eligibility gate.",
		}, []string{"reason"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rental",
			Name:      "tx_retries_total",
			Help:      "Transactions retried after serialization or deadlock failures.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(p.transitions, p.conflicts, p.ineligible, p.retries)
	return p
}

func (p *Prometheus) Transition(from, to string) { p.transitions.WithLabelValues(from, to).Inc() }
func (p *Prometheus) AvailabilityConflict()      { p.conflicts.Inc() }
func (p *Prometheus) EligibilityRejected(reason string) {
	p.ineligible.WithLabelValues(reason).Inc()
}
func (p *Prometheus) TxRetry() { p.retries.Inc() }

// Handler exposes the registry for scraping.
func (p *Prometheus) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{}))
}

// Nop discards all metrics.
type Nop struct{}

func (Nop) Transition(string, string)  {}
func (Nop) AvailabilityConflict()      {}
func (Nop) EligibilityRejected(string) {}
func (Nop) TxRetry()                   {}
