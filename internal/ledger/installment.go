package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// scheduledMarker tags a payment recorded ahead of its date
	scheduledMarker = regexp.MustCompile(`(?i)\s*\((scheduled|programada)\)`)

	// Default descriptions of a pending payment recorded without one
	scheduledLabel = regexp.MustCompile(`(?i)^(scheduled payment|pago programado)$`)

	// Legacy rows carry their plan only in the description
	legacyAnchor = regexp.MustCompile(`(?i)\b(?:in|en) (\d+) (?:installments|cuotas)\b`)
	legacyChild  = regexp.MustCompile(`(?i)\b(?:installment|cuota)s?\b`)
)

func markScheduled(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return "Scheduled payment"
	}
	if scheduledMarker.MatchString(description) {
		return description
	}
	return description + " (scheduled)"
}

// PlanRequest is the input for SubmitLoanWithInstallments
type PlanRequest struct {
	PersonID    string
	Total       decimal.Decimal
	Count       int
	Frequency   Frequency
	Start       time.Time
	Description string
}

// Plan is a recorded loan with its scheduled payments
type Plan struct {
	PlanID       string        `json:"planId"`
	Loan         Transaction   `json:"loan"`
	Installments []Transaction `json:"installments"`
}

// SubmitLoanWithInstallments records a loan together with one scheduled payment per
// installment. Either every row is recorded or none is.
func (l *Ledger) SubmitLoanWithInstallments(req PlanRequest) (Plan, error) {
	// Due dates have whole-second precision; the loan shares the first one's instant
	req.Start = req.Start.Truncate(time.Second)
	schedule, err := GenerateInstallments(req.Total, req.Count, req.Frequency, req.Start)
	if err != nil {
		return Plan{}, err
	}
	amount := schedule[0].Amount

	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = fmt.Sprintf("Loan in %d installments of %s", req.Count, amount.String())
	} else {
		desc = fmt.Sprintf("%s (loan in %d installments of %s)", desc, req.Count, amount.String())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(req.PersonID)
	if p == nil {
		return Plan{}, ErrPersonNotFound
	}

	plan := Plan{PlanID: l.newID()}
	plan.Loan = Transaction{
		ID:               l.newID(),
		PersonID:         p.ID,
		Type:             TypeLoan,
		Amount:           req.Total,
		Description:      desc,
		Date:             req.Start,
		PlanID:           plan.PlanID,
		InstallmentCount: req.Count,
	}
	l.insert(p, &plan.Loan)

	for _, in := range schedule {
		tx := Transaction{
			ID:               l.newID(),
			PersonID:         p.ID,
			Type:             TypePayment,
			Amount:           in.Amount,
			Description:      fmt.Sprintf("Installment %d/%d (scheduled)", in.Number, req.Count),
			Date:             in.Date,
			Status:           StatusPending,
			PlanID:           plan.PlanID,
			Installment:      in.Number,
			InstallmentCount: req.Count,
			Scheduled:        true,
		}
		l.insert(p, &tx)
		plan.Installments = append(plan.Installments, tx)
	}
	return plan, nil
}

// InstallmentGroup is an anchor loan with the payments attributed to it
type InstallmentGroup struct {
	PlanID       string        `json:"planId,omitempty"`
	Loan         Transaction   `json:"loan"`
	Installments []Transaction `json:"installments"`
}

// Grouping splits a transaction list into installment plans and everything else
type Grouping struct {
	Groups     []InstallmentGroup `json:"groups"`
	Standalone []Transaction      `json:"standalone"`
}

// GroupInstallments groups rows by plan id. Rows recorded before plan ids existed are
// grouped by description: a payment mentioning an installment joins the first legacy
// loan, in list order, dated on or before it.
func GroupInstallments(txs []Transaction) Grouping {
	g := Grouping{Groups: []InstallmentGroup{}, Standalone: []Transaction{}}
	byPlan := make(map[string]int)
	var legacy []int

	for _, tx := range txs {
		if tx.Type != TypeLoan {
			continue
		}
		switch {
		case tx.PlanID != "":
			if _, ok := byPlan[tx.PlanID]; ok {
				continue
			}
			byPlan[tx.PlanID] = len(g.Groups)
			g.Groups = append(g.Groups, InstallmentGroup{PlanID: tx.PlanID, Loan: tx, Installments: []Transaction{}})
		case legacyAnchor.MatchString(tx.Description):
			legacy = append(legacy, len(g.Groups))
			g.Groups = append(g.Groups, InstallmentGroup{Loan: tx, Installments: []Transaction{}})
		}
	}

	for _, tx := range txs {
		if tx.Type == TypeLoan {
			if i, ok := byPlan[tx.PlanID]; ok && tx.PlanID != "" && g.Groups[i].Loan.ID == tx.ID {
				continue
			}
			if tx.PlanID == "" && legacyAnchor.MatchString(tx.Description) {
				continue
			}
			g.Standalone = append(g.Standalone, tx)
			continue
		}

		if tx.PlanID != "" {
			if i, ok := byPlan[tx.PlanID]; ok {
				g.Groups[i].Installments = append(g.Groups[i].Installments, tx)
				continue
			}
			g.Standalone = append(g.Standalone, tx)
			continue
		}

		assigned := false
		if legacyChild.MatchString(tx.Description) {
			for _, i := range legacy {
				if !tx.Date.Before(g.Groups[i].Loan.Date) {
					g.Groups[i].Installments = append(g.Groups[i].Installments, tx)
					assigned = true
					break
				}
			}
		}
		if !assigned {
			g.Standalone = append(g.Standalone, tx)
		}
	}
	return g
}

// Grouped returns a person's transactions split into installment groups
func (l *Ledger) Grouped(personID string) (Grouping, error) {
	txs, err := l.Transactions(personID)
	if err != nil {
		return Grouping{}, err
	}
	return GroupInstallments(txs), nil
}

// SettleRequest is the input for RecordInstallmentPayment. Zero fields fall back to
// the scheduled installment's amount, the current time and a derived description.
type SettleRequest struct {
	PersonID      string
	InstallmentID string
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
}

// RecordInstallmentPayment replaces a scheduled installment with a settled payment.
// The person keeps the same number of transactions.
func (l *Ledger) RecordInstallmentPayment(req SettleRequest) (Transaction, error) {
	if req.Amount.IsNegative() {
		return Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(req.PersonID)
	if p == nil {
		return Transaction{}, ErrPersonNotFound
	}
	_, scheduled := l.find(req.PersonID, req.InstallmentID)
	if scheduled == nil {
		return Transaction{}, ErrTransactionNotFound
	}
	if !scheduled.IsScheduled() {
		return Transaction{}, ErrNotScheduled
	}

	payment := Transaction{
		ID:               l.newID(),
		PersonID:         p.ID,
		Type:             TypePayment,
		Amount:           req.Amount,
		Description:      strings.TrimSpace(req.Description),
		Date:             req.Date,
		Status:           StatusPaid,
		PlanID:           scheduled.PlanID,
		Installment:      scheduled.Installment,
		InstallmentCount: scheduled.InstallmentCount,
	}
	if payment.Amount.IsZero() {
		payment.Amount = scheduled.Amount
	}
	if payment.Date.IsZero() {
		payment.Date = l.now()
	}
	if payment.Description == "" {
		payment.Description = settledDescription(scheduled.Description)
	}

	l.insert(p, &payment)
	l.remove(p.ID, scheduled.ID)
	return payment, nil
}

func settledDescription(scheduled string) string {
	desc := strings.TrimSpace(scheduledMarker.ReplaceAllString(strings.ToLower(scheduled), ""))
	if desc == "" || scheduledLabel.MatchString(desc) {
		return "Payment"
	}
	return "Payment of " + desc
}

// TogglePaymentStatus sets a payment's status in place. Loans carry no status.
func (l *Ledger) TogglePaymentStatus(personID, txID string, status Status) (Transaction, error) {
	if status != StatusPaid && status != StatusPending {
		return Transaction{}, ErrInvalidStatus
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(personID)
	if p == nil {
		return Transaction{}, ErrPersonNotFound
	}
	_, tx := l.find(personID, txID)
	if tx == nil {
		return Transaction{}, ErrTransactionNotFound
	}
	if tx.Type != TypePayment {
		return Transaction{}, ErrNotPayment
	}

	tx.Status = status
	l.refold(p)
	return *tx, nil
}
