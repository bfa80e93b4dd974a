package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exposes ledger sizes and the outstanding balance as gauges
func (l *Ledger) RegisterMetrics(reg prometheus.Registerer) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "loanbook",
			Name:      "people",
			Help:      "Number of people in the ledger.",
		}, func() float64 {
			l.mu.RLock()
			defer l.mu.RUnlock()
			return float64(len(l.people))
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "loanbook",
			Name:      "transactions",
			Help:      "Number of transactions across all people.",
		}, func() float64 {
			l.mu.RLock()
			defer l.mu.RUnlock()
			n := 0
			for _, txs := range l.transactions {
				n += len(txs)
			}
			return float64(n)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "loanbook",
			Name:      "scheduled_payments",
			Help:      "Number of installments still waiting to be settled.",
		}, func() float64 {
			l.mu.RLock()
			defer l.mu.RUnlock()
			n := 0
			for _, txs := range l.transactions {
				for _, tx := range txs {
					if tx.IsScheduled() {
						n++
					}
				}
			}
			return float64(n)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "loanbook",
			Name:      "outstanding_balance",
			Help:      "Sum of every person's balance.",
		}, func() float64 {
			l.mu.RLock()
			defer l.mu.RUnlock()
			total := 0.0
			for _, p := range l.people {
				total += p.Balance.InexactFloat64()
			}
			return total
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "loanbook",
			Name:      "split_expenses",
			Help:      "Number of split expenses.",
		}, func() float64 {
			l.mu.RLock()
			defer l.mu.RUnlock()
			return float64(len(l.expenses))
		}),
	}

	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}
