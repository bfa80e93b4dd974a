package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fkhayef/loanbook/internal/database"
	"github.com/fkhayef/loanbook/internal/ledger"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seededLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New(ledger.WithClock(func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }))
	p, err := l.CreatePerson("Rosa Díaz")
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	if _, err := l.SubmitLoanWithInstallments(ledger.PlanRequest{
		PersonID:  p.ID,
		Total:     decimal.NewFromInt(600),
		Count:     2,
		Frequency: ledger.FrequencyMonthly,
		Start:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SubmitLoanWithInstallments failed: %v", err)
	}
	if _, err := l.CreateSplitExpense(ledger.NewSplitExpense{
		Title:        "Taxi",
		Date:         time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount:  decimal.NewFromInt(20),
		Participants: []ledger.Participant{{Name: ledger.IndividualParticipant, Amount: decimal.NewFromInt(20)}},
	}); err != nil {
		t.Fatalf("CreateSplitExpense failed: %v", err)
	}
	return l
}

func TestSnapshotSaveAndRestore(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	src := seededLedger(t)

	svc := NewService(src, NewRepository(db))
	rec, err := svc.SaveSnapshot(ctx, ReasonManual)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if rec.ID == "" || rec.PeopleCount != 1 || rec.Reason != ReasonManual {
		t.Errorf("record = %+v", rec)
	}

	dst := ledger.New()
	restored, err := NewService(dst, NewRepository(db)).RestoreLatest(ctx)
	if err != nil {
		t.Fatalf("RestoreLatest failed: %v", err)
	}
	if restored.ID != rec.ID {
		t.Errorf("restored %s, want %s", restored.ID, rec.ID)
	}

	people := dst.ListPeople()
	if len(people) != 1 || people[0].Name != "Rosa Díaz" || !people[0].Balance.Equal(decimal.NewFromInt(0)) {
		t.Fatalf("people = %+v", people)
	}
	txs, _ := dst.Transactions(people[0].ID)
	if len(txs) != 3 {
		t.Errorf("transactions = %d, want 3", len(txs))
	}
	if len(dst.ListSplitExpenses()) != 1 {
		t.Errorf("split expenses not restored")
	}
	if drifts := dst.Reconcile(false); len(drifts) != 0 {
		t.Errorf("drifts after restore = %+v", drifts)
	}
}

func TestRestoreLatestPicksNewest(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	l := seededLedger(t)
	svc := NewService(l, NewRepository(db))

	if _, err := svc.SaveSnapshot(ctx, ReasonManual); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := l.CreatePerson("Second"); err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	latest, err := svc.SaveSnapshot(ctx, ReasonShutdown)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	records, err := svc.Snapshots(ctx, 10)
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != latest.ID {
		t.Fatalf("records = %+v", records)
	}

	dst := ledger.New()
	if err := NewService(dst, NewRepository(db)).LoadLatest(ctx); err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if n := len(dst.ListPeople()); n != 2 {
		t.Errorf("people = %d, want 2", n)
	}
}

func TestLoadLatestWithoutSnapshots(t *testing.T) {
	ctx := context.Background()
	svc := NewService(ledger.New(), NewRepository(newTestDB(t)))

	if err := svc.LoadLatest(ctx); err != nil {
		t.Errorf("LoadLatest on empty table: %v", err)
	}
	if _, err := svc.RestoreLatest(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("RestoreLatest err = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshotsDisabled(t *testing.T) {
	ctx := context.Background()
	svc := NewService(ledger.New(), nil)

	if err := svc.LoadLatest(ctx); err != nil {
		t.Errorf("LoadLatest err = %v", err)
	}
	if _, err := svc.SaveSnapshot(ctx, ReasonManual); !errors.Is(err, ErrSnapshotsDisabled) {
		t.Errorf("SaveSnapshot err = %v", err)
	}

	rr := httptest.NewRecorder()
	NewHandler(svc).Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/snapshots", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestExportImportOverHTTP(t *testing.T) {
	src := seededLedger(t)
	router := NewHandler(NewService(src, nil)).Routes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "loanbook-2024-06-01.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	doc := rr.Body.Bytes()

	dst := ledger.New()
	dstRouter := NewHandler(NewService(dst, nil)).Routes()
	rr = httptest.NewRecorder()
	dstRouter.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(doc)))
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d (%s)", rr.Code, rr.Body.String())
	}
	var body struct {
		Data ImportResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.People != 1 || body.Data.SplitExpenses != 1 {
		t.Errorf("import summary = %+v", body.Data)
	}
	if len(dst.ListPeople()) != 1 {
		t.Errorf("people after import = %d", len(dst.ListPeople()))
	}
}

func TestImportRejectedLeavesStateUntouched(t *testing.T) {
	l := seededLedger(t)
	router := NewHandler(NewService(l, nil)).Routes()

	docs := []string{
		`{"people":[],"transactions":{},"sharedLinks":[],"sharedSplitExpenses":[]}`,
		`{"people":[],"transactions":{},"sharedLinks":[],"sharedSplitExpenses":[],"splitExpenses":null}`,
		`not json`,
	}
	for _, doc := range docs {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(doc)))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("doc %s: status = %d, want 400", doc, rr.Code)
		}
	}
	if n := len(l.ListPeople()); n != 1 {
		t.Errorf("people = %d after rejected imports, want 1", n)
	}
}

func TestExportWorkbook(t *testing.T) {
	l := seededLedger(t)
	rr := httptest.NewRecorder()
	NewHandler(NewService(l, nil)).Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	people, err := f.GetRows(peopleSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", peopleSheet, err)
	}
	if len(people) != 2 || people[1][1] != "Rosa Díaz" || people[1][2] != "600" {
		t.Errorf("people rows = %v", people)
	}

	txs, err := f.GetRows(transactionsSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", transactionsSheet, err)
	}
	if len(txs) != 4 {
		t.Fatalf("transaction rows = %d, want 4", len(txs))
	}
	if txs[1][1] != "Rosa Díaz" || txs[1][3] != "Loan" || txs[2][7] != "1/2" {
		t.Errorf("transaction rows = %v", txs)
	}
}
