package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateInstallments(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		count      int
		freq       Frequency
		start      time.Time
		wantAmount int64
		wantDates  []time.Time
	}{
		{
			name:       "monthly even split",
			total:      90000,
			count:      3,
			freq:       FrequencyMonthly,
			start:      day(2024, 1, 1),
			wantAmount: 30000,
			wantDates:  []time.Time{day(2024, 1, 1), day(2024, 2, 1), day(2024, 3, 1)},
		},
		{
			name:       "amount rounds up",
			total:      100,
			count:      3,
			freq:       FrequencyWeekly,
			start:      day(2024, 1, 1),
			wantAmount: 34,
			wantDates:  []time.Time{day(2024, 1, 1), day(2024, 1, 8), day(2024, 1, 15)},
		},
		{
			name:       "biweekly",
			total:      2000,
			count:      2,
			freq:       FrequencyBiweekly,
			start:      day(2024, 2, 20),
			wantAmount: 1000,
			wantDates:  []time.Time{day(2024, 2, 20), day(2024, 3, 5)},
		},
		{
			name:       "monthly end of month clamps",
			total:      400,
			count:      4,
			freq:       FrequencyMonthly,
			start:      day(2024, 1, 31),
			wantAmount: 100,
			wantDates:  []time.Time{day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 31), day(2024, 4, 30)},
		},
		{
			name:       "single installment",
			total:      55,
			count:      1,
			freq:       FrequencyMonthly,
			start:      day(2024, 5, 15),
			wantAmount: 55,
			wantDates:  []time.Time{day(2024, 5, 15)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateInstallments(dec(tt.total), tt.count, tt.freq, tt.start)
			if err != nil {
				t.Fatalf("GenerateInstallments failed: %v", err)
			}
			if len(got) != tt.count {
				t.Fatalf("got %d installments, want %d", len(got), tt.count)
			}
			for i, in := range got {
				if in.Number != i+1 {
					t.Errorf("installment %d Number = %d", i, in.Number)
				}
				if !in.Amount.Equal(dec(tt.wantAmount)) {
					t.Errorf("installment %d Amount = %s, want %d", i, in.Amount, tt.wantAmount)
				}
				if !in.Date.Equal(tt.wantDates[i]) {
					t.Errorf("installment %d Date = %s, want %s", i, in.Date, tt.wantDates[i])
				}
			}
		})
	}
}

func TestGenerateInstallmentsErrors(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		count   int
		freq    Frequency
		wantErr error
	}{
		{name: "zero count", total: 100, count: 0, freq: FrequencyMonthly, wantErr: ErrInvalidInstallments},
		{name: "negative count", total: 100, count: -2, freq: FrequencyMonthly, wantErr: ErrInvalidInstallments},
		{name: "zero total", total: 0, count: 2, freq: FrequencyMonthly, wantErr: ErrInvalidAmount},
		{name: "unknown frequency", total: 100, count: 2, freq: "daily", wantErr: ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateInstallments(dec(tt.total), tt.count, tt.freq, day(2024, 1, 1))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	tests := map[string]Frequency{
		"weekly":    FrequencyWeekly,
		"Semanal":   FrequencyWeekly,
		"biweekly":  FrequencyBiweekly,
		"quincenal": FrequencyBiweekly,
		"MONTHLY":   FrequencyMonthly,
		"":          FrequencyMonthly,
	}
	for in, want := range tests {
		got, err := ParseFrequency(in)
		if err != nil || got != want {
			t.Errorf("ParseFrequency(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFrequency("yearly"); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("ParseFrequency(yearly) error = %v", err)
	}
}

func TestSubmitLoanWithInstallments(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Karla")

	plan, err := l.SubmitLoanWithInstallments(PlanRequest{
		PersonID:  p.ID,
		Total:     dec(90000),
		Count:     3,
		Frequency: FrequencyMonthly,
		Start:     day(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("SubmitLoanWithInstallments failed: %v", err)
	}

	if plan.Loan.Description != "Loan in 3 installments of 30000" {
		t.Errorf("loan description = %q", plan.Loan.Description)
	}
	if plan.Loan.PlanID != plan.PlanID || plan.Loan.Type != TypeLoan || !plan.Loan.Amount.Equal(dec(90000)) {
		t.Errorf("loan = %+v", plan.Loan)
	}

	wantDates := []time.Time{day(2024, 1, 1), day(2024, 2, 1), day(2024, 3, 1)}
	for i, in := range plan.Installments {
		if in.Status != StatusPending || !in.Scheduled || in.PlanID != plan.PlanID {
			t.Errorf("installment %d = %+v", i, in)
		}
		if in.Installment != i+1 || in.InstallmentCount != 3 {
			t.Errorf("installment %d position = %d/%d", i, in.Installment, in.InstallmentCount)
		}
		if !in.Amount.Equal(dec(30000)) || !in.Date.Equal(wantDates[i]) {
			t.Errorf("installment %d amount=%s date=%s", i, in.Amount, in.Date)
		}
	}
	if plan.Installments[1].Description != "Installment 2/3 (scheduled)" {
		t.Errorf("installment description = %q", plan.Installments[1].Description)
	}

	txs, _ := l.Transactions(p.ID)
	if len(txs) != 4 {
		t.Fatalf("person has %d transactions, want 4", len(txs))
	}
	got, _ := l.GetPerson(p.ID)
	if !got.TotalLoaned.Equal(dec(90000)) || !got.TotalPaid.Equal(dec(90000)) {
		t.Errorf("totals = %s/%s", got.TotalLoaned, got.TotalPaid)
	}
	assertConsistent(t, l)
}

func TestSubmitLoanWithInstallmentsDescription(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Luis")

	plan, err := l.SubmitLoanWithInstallments(PlanRequest{
		PersonID: p.ID, Total: dec(100), Count: 3, Frequency: FrequencyWeekly,
		Start: day(2024, 1, 1), Description: "Fridge",
	})
	if err != nil {
		t.Fatalf("SubmitLoanWithInstallments failed: %v", err)
	}
	if plan.Loan.Description != "Fridge (loan in 3 installments of 34)" {
		t.Errorf("loan description = %q", plan.Loan.Description)
	}
}

func TestSubmitLoanWithInstallmentsRejectsAtomically(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Mara")

	_, err := l.SubmitLoanWithInstallments(PlanRequest{PersonID: p.ID, Total: dec(100), Count: 0, Frequency: FrequencyMonthly, Start: day(2024, 1, 1)})
	if !errors.Is(err, ErrInvalidInstallments) {
		t.Errorf("error = %v, want %v", err, ErrInvalidInstallments)
	}
	_, err = l.SubmitLoanWithInstallments(PlanRequest{PersonID: "missing", Total: dec(100), Count: 2, Frequency: FrequencyMonthly, Start: day(2024, 1, 1)})
	if !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("error = %v, want %v", err, ErrPersonNotFound)
	}

	txs, _ := l.Transactions(p.ID)
	if len(txs) != 0 {
		t.Errorf("rejected plans left %d transactions", len(txs))
	}
}

func TestRecordInstallmentPayment(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Nico")
	plan, err := l.SubmitLoanWithInstallments(PlanRequest{PersonID: p.ID, Total: dec(90000), Count: 3, Frequency: FrequencyMonthly, Start: day(2024, 1, 1)})
	if err != nil {
		t.Fatalf("SubmitLoanWithInstallments failed: %v", err)
	}
	scheduled := plan.Installments[0]

	payment, err := l.RecordInstallmentPayment(SettleRequest{
		PersonID:      p.ID,
		InstallmentID: scheduled.ID,
		Amount:        dec(30000),
		Date:          day(2024, 1, 3),
	})
	if err != nil {
		t.Fatalf("RecordInstallmentPayment failed: %v", err)
	}

	if payment.Description != "Payment of installment 1/3" {
		t.Errorf("Description = %q", payment.Description)
	}
	if payment.Status != StatusPaid || payment.Scheduled || payment.PlanID != plan.PlanID || payment.Installment != 1 {
		t.Errorf("payment = %+v", payment)
	}

	txs, _ := l.Transactions(p.ID)
	if len(txs) != 4 {
		t.Errorf("transaction count = %d, want 4", len(txs))
	}
	for _, tx := range txs {
		if tx.ID == scheduled.ID {
			t.Error("scheduled installment still present")
		}
	}
	assertConsistent(t, l)

	if _, err := l.RecordInstallmentPayment(SettleRequest{PersonID: p.ID, InstallmentID: payment.ID}); !errors.Is(err, ErrNotScheduled) {
		t.Errorf("settling a paid payment error = %v, want %v", err, ErrNotScheduled)
	}
	if _, err := l.RecordInstallmentPayment(SettleRequest{PersonID: p.ID, InstallmentID: plan.Loan.ID}); !errors.Is(err, ErrNotScheduled) {
		t.Errorf("settling a loan error = %v, want %v", err, ErrNotScheduled)
	}
	if _, err := l.RecordInstallmentPayment(SettleRequest{PersonID: p.ID, InstallmentID: "missing"}); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("settling unknown id error = %v", err)
	}
}

func TestRecordInstallmentPaymentDefaults(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Olga")
	legacy := mustAdd(t, l, NewTransaction{
		PersonID: p.ID, Type: TypePayment, Amount: dec(250), Date: day(2024, 8, 1),
		Description: "Cuota 2/4 (Programada)", Status: StatusPending,
	})
	if !legacy.IsScheduled() {
		t.Fatal("marker-only pending payment not recognised as scheduled")
	}

	payment, err := l.RecordInstallmentPayment(SettleRequest{PersonID: p.ID, InstallmentID: legacy.ID})
	if err != nil {
		t.Fatalf("RecordInstallmentPayment failed: %v", err)
	}
	if !payment.Amount.Equal(dec(250)) {
		t.Errorf("Amount = %s, want 250", payment.Amount)
	}
	if !payment.Date.Equal(day(2024, 6, 1)) {
		t.Errorf("Date = %s, want ledger clock", payment.Date)
	}
	if payment.Description != "Payment of cuota 2/4" {
		t.Errorf("Description = %q", payment.Description)
	}
}

func TestTogglePaymentStatusRejectsLoans(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Pia")
	loan := mustAdd(t, l, NewTransaction{PersonID: p.ID, Type: TypeLoan, Amount: dec(10), Date: day(2024, 1, 1)})

	if _, err := l.TogglePaymentStatus(p.ID, loan.ID, StatusPaid); !errors.Is(err, ErrNotPayment) {
		t.Errorf("error = %v, want %v", err, ErrNotPayment)
	}
	if _, err := l.TogglePaymentStatus(p.ID, loan.ID, "Later"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("error = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestGroupInstallmentsByPlan(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Quique")
	first, _ := l.SubmitLoanWithInstallments(PlanRequest{PersonID: p.ID, Total: dec(300), Count: 3, Frequency: FrequencyMonthly, Start: day(2024, 1, 10)})
	// Overlapping dates: date heuristics alone would misattribute these.
	second, _ := l.SubmitLoanWithInstallments(PlanRequest{PersonID: p.ID, Total: dec(200), Count: 2, Frequency: FrequencyMonthly, Start: day(2024, 1, 5)})
	plain := mustAdd(t, l, NewTransaction{PersonID: p.ID, Type: TypePayment, Amount: dec(5), Date: day(2024, 3, 1)})

	g, err := l.Grouped(p.ID)
	if err != nil {
		t.Fatalf("Grouped failed: %v", err)
	}
	if len(g.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(g.Groups))
	}
	if g.Groups[0].PlanID != first.PlanID || len(g.Groups[0].Installments) != 3 {
		t.Errorf("first group = %+v", g.Groups[0])
	}
	if g.Groups[1].PlanID != second.PlanID || len(g.Groups[1].Installments) != 2 {
		t.Errorf("second group = %+v", g.Groups[1])
	}
	if len(g.Standalone) != 1 || g.Standalone[0].ID != plain.ID {
		t.Errorf("standalone = %+v", g.Standalone)
	}
}

func TestGroupInstallmentsLegacy(t *testing.T) {
	txs := []Transaction{
		{ID: "loan-a", Type: TypeLoan, Amount: dec(300), Date: day(2024, 3, 1), Description: "Préstamo en 3 cuotas de 100"},
		{ID: "loan-b", Type: TypeLoan, Amount: dec(200), Date: day(2024, 1, 1), Description: "Bike (loan in 2 installments of 100)"},
		{ID: "early", Type: TypePayment, Amount: dec(100), Date: day(2024, 2, 1), Description: "Cuota 1/2 (Programada)", Status: StatusPending},
		{ID: "late", Type: TypePayment, Amount: dec(100), Date: day(2024, 4, 1), Description: "Installment 1/3 (scheduled)", Status: StatusPending},
		{ID: "orphan", Type: TypePayment, Amount: dec(100), Date: day(2023, 12, 1), Description: "Cuota 1/1", Status: StatusPaid},
		{ID: "other", Type: TypeLoan, Amount: dec(10), Date: day(2024, 1, 1), Description: "Cash"},
	}

	g := GroupInstallments(txs)

	if len(g.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(g.Groups))
	}
	ids := func(group InstallmentGroup) []string {
		var out []string
		for _, tx := range group.Installments {
			out = append(out, tx.ID)
		}
		return out
	}
	// loan-a comes first in scan order and is dated on or before "late" only.
	if got := ids(g.Groups[0]); len(got) != 1 || got[0] != "late" {
		t.Errorf("loan-a installments = %v, want [late]", got)
	}
	if got := ids(g.Groups[1]); len(got) != 1 || got[0] != "early" {
		t.Errorf("loan-b installments = %v, want [early]", got)
	}
	if len(g.Standalone) != 2 || g.Standalone[0].ID != "orphan" || g.Standalone[1].ID != "other" {
		t.Errorf("standalone = %+v", g.Standalone)
	}
}

func TestGroupInstallmentsEmpty(t *testing.T) {
	g := GroupInstallments(nil)
	if g.Groups == nil || g.Standalone == nil {
		t.Error("empty grouping should use empty slices")
	}
}

func TestRecordInstallmentPaymentSettlesAnyPendingPayment(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{name: "pending without marker", description: "Rent share", want: "Payment of rent share"},
		{name: "spanish default label", description: "Pago programado", want: "Payment"},
		{name: "english default label", description: "Scheduled payment", want: "Payment"},
		{name: "no description", description: "", want: "Payment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			p := mustPerson(t, l, "Nuria")
			pending := mustAdd(t, l, NewTransaction{
				PersonID: p.ID, Type: TypePayment, Amount: dec(50), Date: day(2024, 7, 1),
				Description: tt.description, Status: StatusPending,
			})
			if !pending.IsScheduled() {
				t.Fatal("pending payment not recognised as waiting to be settled")
			}

			payment, err := l.RecordInstallmentPayment(SettleRequest{PersonID: p.ID, InstallmentID: pending.ID})
			if err != nil {
				t.Fatalf("RecordInstallmentPayment failed: %v", err)
			}
			if payment.Description != tt.want || payment.Status != StatusPaid || !payment.Amount.Equal(dec(50)) {
				t.Errorf("payment = %+v", payment)
			}
			txs, _ := l.Transactions(p.ID)
			if len(txs) != 1 || txs[0].ID != payment.ID {
				t.Errorf("transactions = %+v", txs)
			}
			assertConsistent(t, l)
		})
	}
}

func TestSubmitPlanLoanSharesFirstDueInstant(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Tomás")
	start := time.Date(2024, 5, 10, 9, 30, 15, 123_456_789, time.UTC)

	plan, err := l.SubmitLoanWithInstallments(PlanRequest{
		PersonID:  p.ID,
		Total:     dec(300),
		Count:     3,
		Frequency: FrequencyWeekly,
		Start:     start,
	})
	if err != nil {
		t.Fatalf("SubmitLoanWithInstallments failed: %v", err)
	}
	if !plan.Loan.Date.Equal(plan.Installments[0].Date) {
		t.Errorf("loan date %s, first installment %s", plan.Loan.Date, plan.Installments[0].Date)
	}
	if !plan.Loan.Date.Equal(start.Truncate(time.Second)) {
		t.Errorf("loan date = %s", plan.Loan.Date)
	}
}
