package sharelink

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts issued links and visit outcomes
type Metrics struct {
	issuedTotal   *prometheus.CounterVec
	resolvedTotal *prometheus.CounterVec
}

// NewMetrics creates the share link counters and registers them
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		issuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanbook",
			Subsystem: "share_links",
			Name:      "issued_total",
			Help:      "Share links issued, by kind.",
		}, []string{"kind"}),
		resolvedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanbook",
			Subsystem: "share_links",
			Name:      "resolutions_total",
			Help:      "Share link visits, by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.issuedTotal, m.resolvedTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) issued(kind Kind) {
	if m == nil {
		return
	}
	m.issuedTotal.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) resolved(kind Kind, err error) {
	if m == nil {
		return
	}
	m.resolvedTotal.WithLabelValues(string(kind), outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLinkExpired):
		return "expired"
	case errors.Is(err, ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, ErrLinkNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}
