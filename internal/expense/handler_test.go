package expense

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/expense/split"
	"github.com/fkhayef/loanbook/internal/ledger"
)

func newTestRouter(t *testing.T) (chi.Router, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	return NewHandler(NewService(l, split.NewSplitStrategyFactory())).Routes(), l
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeExpense(t *testing.T, rr *httptest.ResponseRecorder) ledger.SplitExpense {
	t.Helper()
	var body struct {
		Success bool                `json:"success"`
		Data    ledger.SplitExpense `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Data
}

func TestCreateSplitExpense(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantShares []string
	}{
		{
			name:       "equal split",
			body:       `{"title":"Dinner","date":"2024-05-01T00:00:00Z","totalAmount":100,"splitType":"EQUAL","participants":[{"name":"Ana"},{"name":"Luis"},{"name":"Eva"}]}`,
			wantStatus: http.StatusCreated,
			wantShares: []string{"34", "33", "33"},
		},
		{
			name:       "exact split by default",
			body:       `{"title":"Taxi","date":"2024-05-01T00:00:00Z","totalAmount":30,"participants":[{"name":"Ana","amount":10},{"name":"Luis","amount":20}]}`,
			wantStatus: http.StatusCreated,
			wantShares: []string{"10", "20"},
		},
		{
			name:       "individual",
			body:       `{"title":"Gym","date":"2024-05-01T00:00:00Z","totalAmount":40,"splitType":"INDIVIDUAL"}`,
			wantStatus: http.StatusCreated,
			wantShares: []string{"40"},
		},
		{
			name:       "shares do not add up",
			body:       `{"title":"Taxi","date":"2024-05-01T00:00:00Z","totalAmount":30,"participants":[{"name":"Ana","amount":10},{"name":"Luis","amount":10}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing title",
			body:       `{"date":"2024-05-01T00:00:00Z","totalAmount":30,"splitType":"INDIVIDUAL"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown split type",
			body:       `{"title":"X","date":"2024-05-01T00:00:00Z","totalAmount":30,"splitType":"EVEN"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank participant name",
			body:       `{"title":"X","date":"2024-05-01T00:00:00Z","totalAmount":30,"splitType":"EQUAL","participants":[{"name":" "}]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, l := newTestRouter(t)
			rr := do(t, router, http.MethodPost, "/", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				if n := len(l.ListSplitExpenses()); n != 0 {
					t.Errorf("expenses stored after rejection = %d", n)
				}
				return
			}

			e := decodeExpense(t, rr)
			if len(e.Participants) != len(tt.wantShares) {
				t.Fatalf("participants = %+v", e.Participants)
			}
			for i, want := range tt.wantShares {
				if !e.Participants[i].Amount.Equal(decimal.RequireFromString(want)) {
					t.Errorf("share[%d] = %s, want %s", i, e.Participants[i].Amount, want)
				}
				if e.Participants[i].ID == "" {
					t.Errorf("participant %d has no id", i)
				}
			}
		})
	}
}

func TestUpdateKeepsPaidFlags(t *testing.T) {
	router, l := newTestRouter(t)
	rr := do(t, router, http.MethodPost, "/", `{"title":"Dinner","date":"2024-05-01T00:00:00Z","totalAmount":90,"splitType":"EQUAL","participants":[{"name":"Ana"},{"name":"Luis"},{"name":"Eva"}]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	e := decodeExpense(t, rr)
	ana, luis := e.Participants[0].ID, e.Participants[1].ID

	rr = do(t, router, http.MethodPost, "/"+e.ID+"/participants/"+ana+"/paid", `{"paid":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set paid status = %d", rr.Code)
	}

	body := `{"title":"Dinner out","date":"2024-05-01T00:00:00Z","totalAmount":120,"splitType":"EQUAL","participants":[{"id":"` + ana + `","name":"Ana"},{"id":"` + luis + `","name":"Luis"},{"name":"Eva"},{"name":"Tom"}]}`
	rr = do(t, router, http.MethodPut, "/"+e.ID, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d (%s)", rr.Code, rr.Body.String())
	}
	updated := decodeExpense(t, rr)
	if updated.Title != "Dinner out" || len(updated.Participants) != 4 {
		t.Fatalf("updated = %+v", updated)
	}
	if !updated.Participants[0].Paid || updated.Participants[0].ID != ana {
		t.Errorf("paid flag lost on update: %+v", updated.Participants[0])
	}
	if updated.Participants[1].Paid || updated.Participants[3].Paid {
		t.Errorf("unexpected paid flags: %+v", updated.Participants)
	}
	if out := updated.Outstanding(); !out.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Outstanding = %s, want 90", out)
	}

	stored, _ := l.GetSplitExpense(e.ID)
	if stored.Title != "Dinner out" {
		t.Errorf("stored title = %q", stored.Title)
	}
}

func TestSplitExpenseNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "get", method: http.MethodGet, path: "/missing", want: http.StatusNotFound},
		{name: "update", method: http.MethodPut, path: "/missing", body: `{"title":"X","date":"2024-05-01T00:00:00Z","totalAmount":1,"splitType":"INDIVIDUAL"}`, want: http.StatusNotFound},
		{name: "paid", method: http.MethodPost, path: "/missing/participants/p/paid", body: `{"paid":true}`, want: http.StatusNotFound},
		{name: "delete is idempotent", method: http.MethodDelete, path: "/missing", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, router, tt.method, tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestListAndDelete(t *testing.T) {
	router, l := newTestRouter(t)
	for _, title := range []string{"One", "Two"} {
		rr := do(t, router, http.MethodPost, "/", `{"title":"`+title+`","date":"2024-05-01T00:00:00Z","totalAmount":10,"splitType":"INDIVIDUAL"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rr.Code)
		}
	}

	rr := do(t, router, http.MethodGet, "/", "")
	var body struct {
		Data []ledger.SplitExpense `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 || body.Meta.Total != 2 || body.Data[0].Title != "One" {
		t.Fatalf("list = %+v", body)
	}

	if rr := do(t, router, http.MethodDelete, "/"+body.Data[0].ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if got := l.ListSplitExpenses(); len(got) != 1 || got[0].Title != "Two" {
		t.Errorf("after delete = %+v", got)
	}
}
