package notification

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/ledger"
)

// DefaultWindowDays is how far ahead upcoming installments are listed
const DefaultWindowDays = 7

// Service derives installment reminders from the ledger
type Service struct {
	ledger *ledger.Ledger
}

// NewService creates a new notification service
func NewService(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// Reminders lists scheduled installments that are overdue or due within the next
// days, most urgent first. Days are counted in whole UTC calendar days.
func (s *Service) Reminders(days int, overdueOnly bool) []Reminder {
	if days < 0 {
		days = DefaultWindowDays
	}
	today := startOfDay(s.ledger.Now())

	reminders := []Reminder{}
	for _, p := range s.ledger.ListPeople() {
		txs, err := s.ledger.Transactions(p.ID)
		if err != nil {
			// Deleted since ListPeople
			continue
		}
		for _, tx := range txs {
			if !tx.IsScheduled() {
				continue
			}
			until := int(startOfDay(tx.Date).Sub(today).Hours() / 24)
			if until > days || (overdueOnly && until >= 0) {
				continue
			}
			reminders = append(reminders, newReminder(p, tx, until))
		}
	}

	slices.SortStableFunc(reminders, func(a, b Reminder) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return reminders
}

// Summarize counts a reminder list
func Summarize(reminders []Reminder) Summary {
	sum := Summary{Amount: decimal.Zero}
	for _, r := range reminders {
		switch r.Type {
		case ReminderTypeOverdue:
			sum.Overdue++
		case ReminderTypeDueSoon:
			sum.DueSoon++
		}
		sum.Amount = sum.Amount.Add(r.Amount)
	}
	return sum
}

func newReminder(p ledger.Person, tx ledger.Transaction, until int) Reminder {
	r := Reminder{
		Type:             ReminderTypeDueSoon,
		PersonID:         p.ID,
		PersonName:       p.Name,
		TransactionID:    tx.ID,
		PlanID:           tx.PlanID,
		Installment:      tx.Installment,
		InstallmentCount: tx.InstallmentCount,
		Amount:           tx.Amount,
		DueDate:          tx.Date,
		DaysUntilDue:     until,
	}
	if until < 0 {
		r.Type = ReminderTypeOverdue
	}
	r.Message = message(r)
	return r
}

func message(r Reminder) string {
	what := "A scheduled payment"
	if r.InstallmentCount > 0 {
		what = fmt.Sprintf("Installment %d/%d", r.Installment, r.InstallmentCount)
	}
	switch {
	case r.DaysUntilDue < 0:
		return fmt.Sprintf("%s from %s (%s) is %d days overdue", what, r.PersonName, r.Amount.String(), -r.DaysUntilDue)
	case r.DaysUntilDue == 0:
		return fmt.Sprintf("%s from %s (%s) is due today", what, r.PersonName, r.Amount.String())
	default:
		return fmt.Sprintf("%s from %s (%s) is due in %d days", what, r.PersonName, r.Amount.String(), r.DaysUntilDue)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
