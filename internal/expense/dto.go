package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/expense/split"
)

// SplitExpenseRequest represents the request to create or update a split expense
type SplitExpenseRequest struct {
	Title        string             `json:"title" validate:"required,max=255"`
	Description  string             `json:"description" validate:"max=1000"`
	Date         time.Time          `json:"date" validate:"required"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	SplitType    string             `json:"splitType" validate:"omitempty,oneof=EQUAL EXACT PERCENTAGE INDIVIDUAL"`
	Participants []split.SplitInput `json:"participants"`
}

// SetPaidRequest represents the request to set a participant's paid flag
type SetPaidRequest struct {
	Paid bool `json:"paid"`
}
