package split

import "github.com/shopspring/decimal"

// IndividualStrategy books the whole expense on a single "Individual" participant
type IndividualStrategy struct{}

// Type returns the split type identifier
func (s *IndividualStrategy) Type() SplitType {
	return SplitTypeIndividual
}

// Validate only needs a positive total; any participants sent are ignored
func (s *IndividualStrategy) Validate(total decimal.Decimal, _ []SplitInput) error {
	if !total.IsPositive() {
		return ErrNonPositiveTotal
	}
	return nil
}

// Calculate returns the single participant owning the total. An existing participant
// id is kept so updates do not lose the paid flag.
func (s *IndividualStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	out := SplitOutput{Name: IndividualName, Amount: total}
	if len(participants) == 1 {
		out.ID = participants[0].ID
	}
	return []SplitOutput{out}, nil
}
