package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReminderType tells whether an installment is late or coming up
type ReminderType string

const (
	ReminderTypeOverdue ReminderType = "OVERDUE"
	ReminderTypeDueSoon ReminderType = "DUE_SOON"
)

// Reminder is a scheduled installment that needs attention
type Reminder struct {
	Type             ReminderType    `json:"type"`
	Message          string          `json:"message"`
	PersonID         string          `json:"personId"`
	PersonName       string          `json:"personName"`
	TransactionID    string          `json:"transactionId"`
	PlanID           string          `json:"planId,omitempty"`
	Installment      int             `json:"installment,omitempty"`
	InstallmentCount int             `json:"installmentCount,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	DueDate          time.Time       `json:"dueDate"`
	DaysUntilDue     int             `json:"daysUntilDue"` // Negative when overdue
}

// Summary counts reminders by type
type Summary struct {
	Overdue int             `json:"overdue"`
	DueSoon int             `json:"dueSoon"`
	Amount  decimal.Decimal `json:"amount"` // Sum of every listed installment
}
