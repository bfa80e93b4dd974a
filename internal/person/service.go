package person

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/ledger"
)

// Service handles people, their transactions and installment plans
type Service struct {
	ledger *ledger.Ledger
}

// NewService creates a new person service
func NewService(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// Create adds a person with zero totals
func (s *Service) Create(req *CreatePersonRequest) (ledger.Person, error) {
	p, err := s.ledger.CreatePerson(req.Name)
	if err != nil {
		return ledger.Person{}, err
	}
	slog.Info("Person created", "person_id", p.ID)
	return p, nil
}

// Get returns one person
func (s *Service) Get(id string) (ledger.Person, error) {
	return s.ledger.GetPerson(id)
}

// List returns every person
func (s *Service) List() []ledger.Person {
	return s.ledger.ListPeople()
}

// Delete removes a person with their transactions and share links. Unknown ids are ignored.
func (s *Service) Delete(id string) {
	if s.ledger.DeletePerson(id) {
		slog.Info("Person deleted", "person_id", id)
	}
}

// Reconcile reports aggregate drift, repairing it when asked
func (s *Service) Reconcile(repair bool) ReconcileResponse {
	drifts := s.ledger.Reconcile(repair)
	if len(drifts) > 0 {
		slog.Warn("Aggregate drift detected", "people", len(drifts), "repaired", repair)
	}
	if drifts == nil {
		drifts = []ledger.Drift{}
	}
	return ReconcileResponse{Repaired: repair && len(drifts) > 0, Drifts: drifts}
}

// Transactions returns a person's transactions
func (s *Service) Transactions(personID string) ([]ledger.Transaction, error) {
	return s.ledger.Transactions(personID)
}

// Grouped returns a person's transactions grouped by installment plan
func (s *Service) Grouped(personID string) (ledger.Grouping, error) {
	return s.ledger.Grouped(personID)
}

// AddTransaction records a loan or payment for a person
func (s *Service) AddTransaction(personID string, req *TransactionRequest) (ledger.Transaction, error) {
	tx, err := s.ledger.AddTransaction(ledger.NewTransaction{
		PersonID:    personID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		Status:      req.Status,
		Scheduled:   req.Scheduled,
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	slog.Info("Transaction recorded", "person_id", personID, "transaction_id", tx.ID, "type", tx.Type, "amount", tx.Amount.String())
	return tx, nil
}

// UpdateTransaction edits the user-facing fields of a transaction. Plan membership is kept.
func (s *Service) UpdateTransaction(personID, txID string, req *TransactionRequest) (ledger.Transaction, error) {
	tx, err := s.ledger.GetTransaction(personID, txID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	tx.Type = req.Type
	tx.Amount = req.Amount
	tx.Description = req.Description
	tx.Date = req.Date
	tx.Status = req.Status
	switch {
	case tx.Type == ledger.TypeLoan:
		tx.Status = ""
		tx.Scheduled = false
	case tx.Status == "":
		tx.Status = ledger.StatusPaid
	}
	if tx.Status == ledger.StatusPaid {
		tx.Scheduled = false
	}
	return s.ledger.UpdateTransaction(personID, tx)
}

// DeleteTransaction removes a transaction. Unknown ids are ignored.
func (s *Service) DeleteTransaction(personID, txID string) {
	if s.ledger.DeleteTransaction(personID, txID) {
		slog.Info("Transaction deleted", "person_id", personID, "transaction_id", txID)
	}
}

// SetStatus toggles a payment between paid and pending
func (s *Service) SetStatus(personID, txID string, status ledger.Status) (ledger.Transaction, error) {
	return s.ledger.TogglePaymentStatus(personID, txID, status)
}

// SubmitPlan records a loan with its scheduled installments
func (s *Service) SubmitPlan(personID string, req *InstallmentPlanRequest) (ledger.Plan, error) {
	freq, err := ledger.ParseFrequency(req.Frequency)
	if err != nil {
		return ledger.Plan{}, err
	}

	plan, err := s.ledger.SubmitLoanWithInstallments(ledger.PlanRequest{
		PersonID:    personID,
		Total:       req.Total,
		Count:       req.Count,
		Frequency:   freq,
		Start:       req.Start,
		Description: req.Description,
	})
	if err != nil {
		return ledger.Plan{}, err
	}
	slog.Info("Installment plan created", "person_id", personID, "plan_id", plan.PlanID, "count", req.Count, "frequency", freq)
	return plan, nil
}

// PayInstallment settles one scheduled installment
func (s *Service) PayInstallment(personID, txID string, req *PayInstallmentRequest) (ledger.Transaction, error) {
	tx, err := s.ledger.RecordInstallmentPayment(ledger.SettleRequest{
		PersonID:      personID,
		InstallmentID: txID,
		Amount:        req.Amount,
		Date:          req.Date,
		Description:   req.Description,
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	slog.Info("Installment paid", "person_id", personID, "installment_id", txID, "transaction_id", tx.ID)
	return tx, nil
}

// Preview generates a schedule without recording anything
func (s *Service) Preview(req *PreviewRequest) (PreviewResponse, error) {
	freq, err := ledger.ParseFrequency(req.Frequency)
	if err != nil {
		return PreviewResponse{}, err
	}

	installments, err := ledger.GenerateInstallments(req.Total, req.Count, freq, req.Start)
	if err != nil {
		return PreviewResponse{}, err
	}
	sum := decimal.Zero
	for _, in := range installments {
		sum = sum.Add(in.Amount)
	}
	return PreviewResponse{Installments: installments, Total: sum}, nil
}
