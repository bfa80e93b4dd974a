package split

import "github.com/shopspring/decimal"

// EqualStrategy gives every participant the floor of total/n whole units.
// The units lost to flooring go to the first participant so the shares add up.
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	return validateCommon(total, participants)
}

// Calculate divides the total equally among all participants
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(len(participants)))
	share := total.Div(n).Floor()
	remainder := total.Sub(share.Mul(n))

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		amount := share
		if i == 0 {
			amount = amount.Add(remainder)
		}
		outputs[i] = SplitOutput{ID: p.ID, Name: p.Name, Amount: amount}
	}
	return outputs, nil
}
