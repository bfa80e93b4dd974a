package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Export documents carry amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType distinguishes money lent from money paid back
type TransactionType string

const (
	TypeLoan    TransactionType = "Loan"
	TypePayment TransactionType = "Payment"
)

// UnmarshalText accepts the Spanish spellings found in older exports
func (t *TransactionType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Loan", "Préstamo":
		*t = TypeLoan
	case "Payment", "Pago":
		*t = TypePayment
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, string(b))
	}
	return nil
}

// Status is the settlement state of a person or a payment
type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPending Status = "Pending"
)

// UnmarshalText accepts the Spanish spellings found in older exports
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*s = ""
	case "Paid", "Pagado":
		*s = StatusPaid
	case "Pending", "Pendiente":
		*s = StatusPending
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(b))
	}
	return nil
}

// Person is someone money is lent to. The totals are derived from their transactions.
type Person struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalLoaned decimal.Decimal `json:"totalLoaned"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      Status          `json:"status"`
}

// Transaction is a single loan or payment row of a person
type Transaction struct {
	ID          string          `json:"id"`
	PersonID    string          `json:"personId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Status      Status          `json:"status,omitempty"` // Only meaningful for payments

	// Installment plan membership
	PlanID           string `json:"planId,omitempty"`
	Installment      int    `json:"installment,omitempty"`      // 1-based position inside the plan
	InstallmentCount int    `json:"installmentCount,omitempty"` // Number of installments of the plan
	Scheduled        bool   `json:"scheduled,omitempty"`        // Future payment not settled yet
}

// IsScheduled reports whether the transaction is a payment still waiting to be settled.
// Any pending payment qualifies, whether or not it carries the scheduled flag or marker.
func (t Transaction) IsScheduled() bool {
	return t.Type == TypePayment && t.Status == StatusPending
}

// ShareLink is an issued read-only link to one person's ledger
type ShareLink struct {
	ID                   string     `json:"id"`
	PersonID             string     `json:"personId"`
	PersonName           string     `json:"personName"`
	URL                  string     `json:"url"`
	CreatedAt            time.Time  `json:"createdAt"`
	ExpiresAt            *time.Time `json:"expiresAt"` // nil never expires
	IncludesTransactions bool       `json:"includesTransactions"`
	IncludesPersonalInfo bool       `json:"includesPersonalInfo"`
	IsPasswordProtected  bool       `json:"isPasswordProtected"`
	Views                int        `json:"views"`
}

// Expired reports whether the link stopped being valid at the given time
func (s ShareLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// ExpenseShareLink is an issued read-only link to one split expense
type ExpenseShareLink struct {
	ID                   string     `json:"id"`
	ExpenseID            string     `json:"expenseId"`
	ExpenseTitle         string     `json:"expenseTitle"`
	URL                  string     `json:"url"`
	CreatedAt            time.Time  `json:"createdAt"`
	ExpiresAt            *time.Time `json:"expiresAt"` // nil never expires
	IncludesDetails      bool       `json:"includesDetails"`
	IncludesParticipants bool       `json:"includesParticipants"`
	IsPasswordProtected  bool       `json:"isPasswordProtected"`
	Views                int        `json:"views"`
}

// Expired reports whether the link stopped being valid at the given time
func (s ExpenseShareLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// IndividualParticipant names the single participant of a non-split expense
const IndividualParticipant = "Individual"

// Participant is one person's share of a split expense
type Participant struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid"`
}

// SplitExpense is an expense divided among named participants
type SplitExpense struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Participants []Participant   `json:"participants"`
}

// IsIndividual reports whether the expense belongs to a single person
func (e SplitExpense) IsIndividual() bool {
	return len(e.Participants) == 1 && e.Participants[0].Name == IndividualParticipant
}

// Outstanding is the sum owed by participants who have not paid yet
func (e SplitExpense) Outstanding() decimal.Decimal {
	total := decimal.Zero
	for _, p := range e.Participants {
		if !p.Paid {
			total = total.Add(p.Amount)
		}
	}
	return total
}
