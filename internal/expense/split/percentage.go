package split

import "github.com/shopspring/decimal"

// PercentageStrategy divides the expense based on each participant's percentage
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return ErrPercentageOutOfRange
		}
		sum = sum.Add(*p.Percentage)
	}
	if !sum.Equal(hundred) {
		return ErrInvalidPercentages
	}
	return nil
}

// Calculate gives each participant their percentage of the total rounded to cents.
// The last participant absorbs the rounding difference.
func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	assigned := decimal.Zero
	for i, p := range participants {
		amount := total.Mul(*p.Percentage).Div(hundred).Round(2)
		assigned = assigned.Add(amount)
		outputs[i] = SplitOutput{ID: p.ID, Name: p.Name, Amount: amount}
	}

	last := len(outputs) - 1
	outputs[last].Amount = outputs[last].Amount.Add(total.Sub(assigned))
	return outputs, nil
}
