package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeIndividual SplitType = "INDIVIDUAL"
)

// IndividualName is the participant name that marks a non-split expense
const IndividualName = "Individual"

// SplitInput represents a participant in a split with optional values
type SplitInput struct {
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For EXACT split
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE split
}

// SplitOutput represents the calculated share of a single participant
type SplitOutput struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes the share of every participant
	Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(total decimal.Decimal, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeIndividual:
		return &IndividualStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests).
// An empty type means EXACT.
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	if splitType == "" {
		return f.Create(SplitTypeExact)
	}
	return f.Create(SplitType(strings.ToUpper(splitType)))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNonPositiveTotal     = errors.New("total amount must be positive")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to the total within one unit")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

var (
	hundred = decimal.NewFromInt(100)
	oneUnit = decimal.NewFromInt(1)
)

func validateCommon(total decimal.Decimal, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !total.IsPositive() {
		return ErrNonPositiveTotal
	}
	return nil
}
