package ledger

import "github.com/shopspring/decimal"

// Policy decides which transactions count towards a person's totals
type Policy struct {
	// CountScheduledPayments keeps pending (scheduled) payments inside TotalPaid
	// the moment they are recorded. When false only settled payments count.
	CountScheduledPayments bool
}

// DefaultPolicy counts every payment, scheduled or not
func DefaultPolicy() Policy {
	return Policy{CountScheduledPayments: true}
}

func (p Policy) counts(tx *Transaction) bool {
	switch tx.Type {
	case TypeLoan:
		return true
	case TypePayment:
		return p.CountScheduledPayments || tx.Status != StatusPending
	default:
		return false
	}
}

// Totals is the fold of a transaction set
type Totals struct {
	Loaned decimal.Decimal `json:"totalLoaned"`
	Paid   decimal.Decimal `json:"totalPaid"`
}

// Balance is what is still owed
func (t Totals) Balance() decimal.Decimal {
	return t.Loaned.Sub(t.Paid)
}

// Equal compares both sums by value
func (t Totals) Equal(o Totals) bool {
	return t.Loaned.Equal(o.Loaned) && t.Paid.Equal(o.Paid)
}

// Fold sums a transaction set under the policy
func (p Policy) Fold(txs []Transaction) Totals {
	totals := Totals{Loaned: decimal.Zero, Paid: decimal.Zero}
	for i := range txs {
		totals = p.add(totals, &txs[i])
	}
	return totals
}

func (p Policy) add(t Totals, tx *Transaction) Totals {
	if !p.counts(tx) {
		return t
	}
	switch tx.Type {
	case TypeLoan:
		t.Loaned = t.Loaned.Add(tx.Amount)
	case TypePayment:
		t.Paid = t.Paid.Add(tx.Amount)
	}
	return t
}

func (p *Person) totals() Totals {
	return Totals{Loaned: p.TotalLoaned, Paid: p.TotalPaid}
}

// refold recomputes a person's totals from their rows. Caller holds the lock.
func (l *Ledger) refold(p *Person) {
	p.setTotals(l.policy.Fold(derefAll(l.transactions[p.ID])))
}

// setTotals stores the sums and re-derives balance and status
func (p *Person) setTotals(t Totals) {
	p.TotalLoaned = t.Loaned
	p.TotalPaid = t.Paid
	p.Balance = t.Balance()
	if p.Balance.LessThanOrEqual(decimal.Zero) {
		p.Status = StatusPaid
	} else {
		p.Status = StatusPending
	}
}

// Drift describes a person whose stored totals disagree with their transactions
type Drift struct {
	PersonID string `json:"personId"`
	Name     string `json:"name"`
	Stored   Totals `json:"stored"`
	Derived  Totals `json:"derived"`
}

// Reconcile refolds every person's transactions and reports the ones that drifted.
// With repair set the derived totals replace the stored ones.
func (l *Ledger) Reconcile(repair bool) []Drift {
	if repair {
		l.mu.Lock()
		defer l.mu.Unlock()
	} else {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	var drifts []Drift
	for _, p := range l.people {
		derived := l.policy.Fold(derefAll(l.transactions[p.ID]))
		stored := p.totals()
		if stored.Equal(derived) && p.Balance.Equal(derived.Balance()) {
			continue
		}
		drifts = append(drifts, Drift{
			PersonID: p.ID,
			Name:     p.Name,
			Stored:   stored,
			Derived:  derived,
		})
		if repair {
			p.setTotals(derived)
		}
	}
	return drifts
}
