package expense

import (
	"fmt"
	"log/slog"

	"github.com/fkhayef/loanbook/internal/expense/split"
	"github.com/fkhayef/loanbook/internal/ledger"
)

// Service handles split expense business logic
type Service struct {
	ledger       *ledger.Ledger
	splitFactory *split.Factory
}

// NewService creates a new split expense service with dependencies injected
func NewService(l *ledger.Ledger, splitFactory *split.Factory) *Service {
	return &Service{
		ledger:       l,
		splitFactory: splitFactory,
	}
}

// Create records an expense with participant shares computed by the requested strategy
func (s *Service) Create(req *SplitExpenseRequest) (ledger.SplitExpense, error) {
	in, err := s.build(req, nil)
	if err != nil {
		return ledger.SplitExpense{}, err
	}

	e, err := s.ledger.CreateSplitExpense(in)
	if err != nil {
		return ledger.SplitExpense{}, err
	}
	slog.Info("Split expense created", "expense_id", e.ID, "participants", len(e.Participants), "total", e.TotalAmount.String())
	return e, nil
}

// Update replaces an expense. Participants sent with their id keep their paid flag.
func (s *Service) Update(id string, req *SplitExpenseRequest) (ledger.SplitExpense, error) {
	current, err := s.ledger.GetSplitExpense(id)
	if err != nil {
		return ledger.SplitExpense{}, err
	}

	in, err := s.build(req, current.Participants)
	if err != nil {
		return ledger.SplitExpense{}, err
	}
	return s.ledger.UpdateSplitExpense(id, in)
}

// build runs the split strategy and turns its output into ledger participants
func (s *Service) build(req *SplitExpenseRequest, existing []ledger.Participant) (ledger.NewSplitExpense, error) {
	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return ledger.NewSplitExpense{}, err
	}

	shares, err := strategy.Calculate(req.TotalAmount, req.Participants)
	if err != nil {
		return ledger.NewSplitExpense{}, fmt.Errorf("%s split: %w", strategy.Type(), err)
	}

	paid := make(map[string]bool, len(existing))
	for _, p := range existing {
		paid[p.ID] = p.Paid
	}

	participants := make([]ledger.Participant, len(shares))
	for i, sh := range shares {
		participants[i] = ledger.Participant{
			ID:     sh.ID,
			Name:   sh.Name,
			Amount: sh.Amount,
			Paid:   paid[sh.ID],
		}
	}

	return ledger.NewSplitExpense{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		TotalAmount:  req.TotalAmount,
		Participants: participants,
	}, nil
}

// Get returns one expense
func (s *Service) Get(id string) (ledger.SplitExpense, error) {
	return s.ledger.GetSplitExpense(id)
}

// List returns every expense
func (s *Service) List() []ledger.SplitExpense {
	return s.ledger.ListSplitExpenses()
}

// Delete removes an expense and its share links. Unknown ids are ignored.
func (s *Service) Delete(id string) {
	if s.ledger.DeleteSplitExpense(id) {
		slog.Info("Split expense deleted", "expense_id", id)
	}
}

// SetPaid sets one participant's paid flag
func (s *Service) SetPaid(expenseID, participantID string, paid bool) (ledger.SplitExpense, error) {
	return s.ledger.SetParticipantPaid(expenseID, participantID, paid)
}
