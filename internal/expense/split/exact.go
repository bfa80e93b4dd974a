package split

import "github.com/shopspring/decimal"

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks that every participant has an amount and that the amounts add up
// to the total, allowing one unit of rounding
func (s *ExactStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		sum = sum.Add(*p.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(oneUnit) {
		return ErrInvalidExactAmounts
	}
	return nil
}

// Calculate returns the exact amounts specified for each participant
func (s *ExactStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{ID: p.ID, Name: p.Name, Amount: *p.Amount}
	}
	return outputs, nil
}
