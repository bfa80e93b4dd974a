package sharelink

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/ledger"
)

// IssuePersonLinkRequest represents the request to share a person's ledger
type IssuePersonLinkRequest struct {
	PersonID            string `json:"personId" validate:"required"`
	ExpiryDays          int    `json:"expiryDays" validate:"gte=0,lte=3650"`
	IncludeTransactions bool   `json:"includeTransactions"`
	IncludePersonalInfo bool   `json:"includePersonalInfo"`
	RequirePassword     bool   `json:"requirePassword"`
}

// IssueExpenseLinkRequest represents the request to share a split expense
type IssueExpenseLinkRequest struct {
	ExpenseID           string `json:"expenseId" validate:"required"`
	ExpiryDays          int    `json:"expiryDays" validate:"gte=0,lte=3650"`
	IncludeDetails      bool   `json:"includeDetails"`
	IncludeParticipants bool   `json:"includeParticipants"`
	RequirePassword     bool   `json:"requirePassword"`
}

// LinksResponse lists both kinds of link records
type LinksResponse struct {
	People   []ledger.ShareLink        `json:"people"`
	Expenses []ledger.ExpenseShareLink `json:"expenses"`
}

// PersonView is the read-only projection served to a person link visitor
type PersonView struct {
	LinkID       string               `json:"linkId"`
	Views        int                  `json:"views"`
	ExpiresAt    *time.Time           `json:"expiresAt"`
	PersonID     string               `json:"personId,omitempty"` // Personal info only
	Name         string               `json:"name"`
	TotalLoaned  decimal.Decimal      `json:"totalLoaned"`
	TotalPaid    decimal.Decimal      `json:"totalPaid"`
	Balance      decimal.Decimal      `json:"balance"`
	Status       ledger.Status        `json:"status"`
	Progress     int64                `json:"progress"` // Percent of the loaned total paid back
	Transactions []ledger.Transaction `json:"transactions,omitempty"`
}

// ExpenseView is the read-only projection served to an expense link visitor
type ExpenseView struct {
	LinkID       string               `json:"linkId"`
	Views        int                  `json:"views"`
	ExpiresAt    *time.Time           `json:"expiresAt"`
	Title        string               `json:"title"`
	Date         time.Time            `json:"date"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	Individual   bool                 `json:"individual"`
	Description  string               `json:"description,omitempty"`  // Details only
	Outstanding  *decimal.Decimal     `json:"outstanding,omitempty"`  // Details only
	Participants []ledger.Participant `json:"participants,omitempty"` // Participants only
}
