package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
)

// Frequency is the spacing between installment due dates
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// ParseFrequency accepts the English names and the Spanish ones older clients send
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "semanal":
		return FrequencyWeekly, nil
	case "biweekly", "quincenal":
		return FrequencyBiweekly, nil
	case "monthly", "mensual", "":
		return FrequencyMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
}

// Installment is one generated due date
type Installment struct {
	Number int             `json:"number"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// GenerateInstallments splits total into count equal installments rounded up to the
// next whole unit, due on the dates the frequency produces from start. The last
// installment is not corrected, so the sum may exceed total.
func GenerateInstallments(total decimal.Decimal, count int, freq Frequency, start time.Time) ([]Installment, error) {
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if count <= 0 {
		return nil, ErrInvalidInstallments
	}
	if start.IsZero() {
		return nil, ErrMissingDate
	}

	dates, err := dueDates(count, freq, start)
	if err != nil {
		return nil, err
	}

	amount := total.Div(decimal.NewFromInt(int64(count))).Ceil()
	installments := make([]Installment, len(dates))
	for i, d := range dates {
		installments[i] = Installment{Number: i + 1, Amount: amount, Date: d}
	}
	return installments, nil
}

// dueDates expands the recurrence rule for a plan. Monthly plans starting on the 29th
// to 31st fall on the last day of shorter months.
func dueDates(count int, freq Frequency, start time.Time) ([]time.Time, error) {
	opt := rrule.ROption{
		Dtstart: start,
		Count:   count,
	}
	switch freq {
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 1
	case FrequencyBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Interval = 1
		day := start.Day()
		if day <= 28 {
			opt.Bymonthday = []int{day}
		} else {
			for d := 28; d <= day; d++ {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
			opt.Bysetpos = []int{-1}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, freq)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule: %w", err)
	}
	dates := rule.All()
	if len(dates) != count {
		return nil, fmt.Errorf("failed to build schedule: got %d dates, want %d", len(dates), count)
	}
	return dates, nil
}
