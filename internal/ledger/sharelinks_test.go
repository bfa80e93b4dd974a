package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestShareLinkExpired(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(7 * 24 * time.Hour)

	tests := []struct {
		name    string
		expires *time.Time
		now     time.Time
		want    bool
	}{
		{name: "never expires", expires: nil, now: created.AddDate(10, 0, 0), want: false},
		{name: "before expiry", expires: &expires, now: expires.Add(-time.Millisecond), want: false},
		{name: "at expiry", expires: &expires, now: expires, want: false},
		{name: "after expiry", expires: &expires, now: expires.Add(time.Millisecond), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := ShareLink{CreatedAt: created, ExpiresAt: tt.expires}
			if got := link.Expired(tt.now); got != tt.want {
				t.Errorf("Expired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewPersonLink(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Uma")
	mustAdd(t, l, NewTransaction{PersonID: p.ID, Type: TypeLoan, Amount: dec(10), Date: day(2024, 1, 1)})
	link, err := l.AddShareLink(ShareLink{PersonID: p.ID})
	if err != nil {
		t.Fatalf("AddShareLink failed: %v", err)
	}
	if link.PersonName != "Uma" || link.ID == "" {
		t.Errorf("link = %+v", link)
	}

	for want := 1; want <= 3; want++ {
		got, person, txs, err := l.ViewPersonLink(link.ID)
		if err != nil {
			t.Fatalf("ViewPersonLink failed: %v", err)
		}
		if got.Views != want {
			t.Errorf("Views = %d, want %d", got.Views, want)
		}
		if person.ID != p.ID || len(txs) != 1 {
			t.Errorf("person=%+v txs=%d", person, len(txs))
		}
	}

	if _, _, _, err := l.ViewPersonLink("missing"); !errors.Is(err, ErrShareLinkNotFound) {
		t.Errorf("unknown link error = %v", err)
	}
	if _, err := l.AddShareLink(ShareLink{PersonID: "missing"}); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("link to unknown person error = %v", err)
	}
}

func TestViewLinkWithDanglingTarget(t *testing.T) {
	l := newTestLedger(t)
	snap := l.Export()
	snap.SharedLinks = []ShareLink{{ID: "l1", PersonID: "gone"}}
	snap.SharedSplitExpenses = []ExpenseShareLink{{ID: "l2", ExpenseID: "gone"}}
	l.Restore(snap)

	if _, _, _, err := l.ViewPersonLink("l1"); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("dangling person link error = %v", err)
	}
	if _, _, err := l.ViewExpenseLink("l2"); !errors.Is(err, ErrSplitExpenseNotFound) {
		t.Errorf("dangling expense link error = %v", err)
	}
	if got, _ := l.ShareLink("l1"); got.Views != 0 {
		t.Errorf("dangling view counted: %d", got.Views)
	}
}

func TestDeleteShareLinkEitherKind(t *testing.T) {
	l := newTestLedger(t)
	p := mustPerson(t, l, "Vera")
	e, err := l.CreateSplitExpense(NewSplitExpense{
		Title: "Gas", Date: day(2024, 1, 1), TotalAmount: dec(10),
		Participants: []Participant{{Name: IndividualParticipant, Amount: dec(10)}},
	})
	if err != nil {
		t.Fatalf("CreateSplitExpense failed: %v", err)
	}
	pl, _ := l.AddShareLink(ShareLink{PersonID: p.ID})
	el, _ := l.AddExpenseShareLink(ExpenseShareLink{ExpenseID: e.ID})

	if !l.DeleteShareLink(pl.ID) || !l.DeleteShareLink(el.ID) {
		t.Fatal("DeleteShareLink reported nothing removed")
	}
	if l.DeleteShareLink(pl.ID) {
		t.Error("second delete reported a removal")
	}
	if len(l.ShareLinks())+len(l.ExpenseShareLinks()) != 0 {
		t.Error("links survived deletion")
	}
}
