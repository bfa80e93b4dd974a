package ledger

import "errors"

// Common errors
var (
	ErrPersonNotFound         = errors.New("person not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrSplitExpenseNotFound   = errors.New("split expense not found")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrShareLinkNotFound      = errors.New("share link not found")
	ErrEmptyName              = errors.New("name is required")
	ErrEmptyTitle             = errors.New("title is required")
	ErrInvalidAmount          = errors.New("amount must be a positive number")
	ErrInvalidType            = errors.New("invalid transaction type")
	ErrInvalidStatus          = errors.New("invalid transaction status")
	ErrMissingDate            = errors.New("date is required")
	ErrNotPayment             = errors.New("only payments carry a settlement status")
	ErrNotScheduled           = errors.New("transaction is not a scheduled installment")
	ErrInvalidInstallments    = errors.New("installment count must be a positive number")
	ErrInvalidFrequency       = errors.New("unknown installment frequency")
	ErrNoParticipants         = errors.New("at least one participant is required")
	ErrNegativeShare          = errors.New("participant amounts cannot be negative")
	ErrParticipantSumMismatch = errors.New("participant amounts do not add up to the total")
	ErrMissingImportKey       = errors.New("import document is missing a required key")
	ErrInvalidSnapshot        = errors.New("import document is not valid")
)
