package person

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/ledger"
)

// CreatePersonRequest represents the request body for creating a person
type CreatePersonRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// TransactionRequest represents the request body for adding or editing a transaction.
// Type and status also accept the Spanish spellings of older clients.
type TransactionRequest struct {
	Type        ledger.TransactionType `json:"type" validate:"required"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description" validate:"max=500"`
	Date        time.Time              `json:"date" validate:"required"`
	Status      ledger.Status          `json:"status,omitempty"`
	Scheduled   bool                   `json:"scheduled,omitempty"`
}

// StatusRequest represents the request body for toggling a payment's status
type StatusRequest struct {
	Status ledger.Status `json:"status" validate:"required"`
}

// InstallmentPlanRequest represents the request body for a loan paid in installments
type InstallmentPlanRequest struct {
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count" validate:"required,gte=1,lte=360"`
	Frequency   string          `json:"frequency" validate:"omitempty,max=20"`
	Start       time.Time       `json:"start" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
}

// PreviewRequest represents the request body for previewing an installment schedule
type PreviewRequest struct {
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count" validate:"required,gte=1,lte=360"`
	Frequency string          `json:"frequency" validate:"omitempty,max=20"`
	Start     time.Time       `json:"start" validate:"required"`
}

// PayInstallmentRequest represents the optional body for settling an installment.
// Omitted fields default to the installment's amount, today and a derived description.
type PayInstallmentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description" validate:"max=500"`
}

// PreviewResponse is a generated schedule with its sum
type PreviewResponse struct {
	Installments []ledger.Installment `json:"installments"`
	Total        decimal.Decimal      `json:"total"` // May exceed the requested total by rounding
}

// ReconcileResponse reports people whose stored totals disagree with their transactions
type ReconcileResponse struct {
	Repaired bool           `json:"repaired"`
	Drifts   []ledger.Drift `json:"drifts"`
}
