package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// shareTolerance is how far participant amounts may drift from the total after rounding
var shareTolerance = decimal.NewFromInt(1)

// NewSplitExpense is the input for creating or updating a split expense
type NewSplitExpense struct {
	Title        string
	Description  string
	Date         time.Time
	TotalAmount  decimal.Decimal
	Participants []Participant
}

func (in *NewSplitExpense) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrEmptyTitle
	}
	if !in.TotalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(in.Participants) == 0 {
		return ErrNoParticipants
	}
	sum := decimal.Zero
	for i := range in.Participants {
		in.Participants[i].Name = strings.TrimSpace(in.Participants[i].Name)
		if in.Participants[i].Name == "" {
			return ErrEmptyName
		}
		if in.Participants[i].Amount.IsNegative() {
			return ErrNegativeShare
		}
		sum = sum.Add(in.Participants[i].Amount)
	}
	if sum.Sub(in.TotalAmount).Abs().GreaterThan(shareTolerance) {
		return ErrParticipantSumMismatch
	}
	if in.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// CreateSplitExpense records an expense and assigns ids to its participants
func (l *Ledger) CreateSplitExpense(in NewSplitExpense) (SplitExpense, error) {
	in.Participants = slices.Clone(in.Participants)
	if err := in.validate(); err != nil {
		return SplitExpense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := &SplitExpense{
		ID:           l.newID(),
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		TotalAmount:  in.TotalAmount,
		Participants: in.Participants,
	}
	for i := range e.Participants {
		e.Participants[i].ID = l.newID()
	}
	l.expenses = append(l.expenses, e)
	return cloneExpense(e), nil
}

// UpdateSplitExpense replaces an expense's fields. Participants keep their id when one
// is supplied and get a fresh one otherwise.
func (l *Ledger) UpdateSplitExpense(id string, in NewSplitExpense) (SplitExpense, error) {
	in.Participants = slices.Clone(in.Participants)
	if err := in.validate(); err != nil {
		return SplitExpense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.expense(id)
	if e == nil {
		return SplitExpense{}, ErrSplitExpenseNotFound
	}
	e.Title = in.Title
	e.Description = in.Description
	e.Date = in.Date
	e.TotalAmount = in.TotalAmount
	e.Participants = in.Participants
	for i := range e.Participants {
		if e.Participants[i].ID == "" {
			e.Participants[i].ID = l.newID()
		}
	}
	for _, link := range l.expenseLinks {
		if link.ExpenseID == id {
			link.ExpenseTitle = e.Title
		}
	}
	return cloneExpense(e), nil
}

// DeleteSplitExpense removes the expense and its share links. Unknown ids are ignored.
func (l *Ledger) DeleteSplitExpense(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := len(l.expenses)
	l.expenses = slices.DeleteFunc(l.expenses, func(e *SplitExpense) bool { return e.ID == id })
	l.expenseLinks = slices.DeleteFunc(l.expenseLinks, func(s *ExpenseShareLink) bool { return s.ExpenseID == id })
	return len(l.expenses) != before
}

// GetSplitExpense returns a copy of the expense
func (l *Ledger) GetSplitExpense(id string) (SplitExpense, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e := l.expense(id)
	if e == nil {
		return SplitExpense{}, ErrSplitExpenseNotFound
	}
	return cloneExpense(e), nil
}

// ListSplitExpenses returns every expense in creation order
func (l *Ledger) ListSplitExpenses() []SplitExpense {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]SplitExpense, len(l.expenses))
	for i, e := range l.expenses {
		out[i] = cloneExpense(e)
	}
	return out
}

// SetParticipantPaid marks a participant's share as paid or unpaid
func (l *Ledger) SetParticipantPaid(expenseID, participantID string, paid bool) (SplitExpense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.expense(expenseID)
	if e == nil {
		return SplitExpense{}, ErrSplitExpenseNotFound
	}
	i := slices.IndexFunc(e.Participants, func(p Participant) bool { return p.ID == participantID })
	if i < 0 {
		return SplitExpense{}, ErrParticipantNotFound
	}
	e.Participants[i].Paid = paid
	return cloneExpense(e), nil
}

func (l *Ledger) expense(id string) *SplitExpense {
	for _, e := range l.expenses {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func cloneExpense(e *SplitExpense) SplitExpense {
	out := *e
	out.Participants = slices.Clone(e.Participants)
	return out
}
