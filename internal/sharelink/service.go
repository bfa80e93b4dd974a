package sharelink

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/loanbook/internal/ledger"
)

// Resolution outcomes, each a terminal state for the visitor
var (
	ErrLinkExpired      = errors.New("share link has expired")
	ErrPasswordRequired = errors.New("share link requires a password")
	ErrWrongPassword    = errors.New("wrong share link password")
	ErrInvalidLink      = errors.New("share link is not valid")
	ErrLinkNotFound     = errors.New("shared item not found")
	ErrNegativeExpiry   = errors.New("expiry days cannot be negative")
)

const dayMs = int64(86_400_000)

// Service issues share links and resolves visits against the ledger
type Service struct {
	ledger   *ledger.Ledger
	signer   *Signer
	baseURL  string
	password string
	metrics  *Metrics
}

// NewService creates a new share link service. metrics may be nil.
func NewService(l *ledger.Ledger, signer *Signer, baseURL, password string, metrics *Metrics) *Service {
	return &Service{
		ledger:   l,
		signer:   signer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		password: password,
		metrics:  metrics,
	}
}

// expiry returns the creation instant and the expiry in epoch milliseconds (0 never)
func (s *Service) expiry(days int) (time.Time, int64, *time.Time, error) {
	if days < 0 {
		return time.Time{}, 0, nil, ErrNegativeExpiry
	}
	nowMs := s.ledger.Now().UnixMilli()
	created := time.UnixMilli(nowMs).UTC()
	if days == 0 {
		return created, 0, nil, nil
	}
	expMs := nowMs + int64(days)*dayMs
	expiresAt := time.UnixMilli(expMs).UTC()
	return created, expMs, &expiresAt, nil
}

// IssuePersonLink creates a signed link to one person's ledger
func (s *Service) IssuePersonLink(req IssuePersonLinkRequest) (ledger.ShareLink, error) {
	created, expMs, expiresAt, err := s.expiry(req.ExpiryDays)
	if err != nil {
		return ledger.ShareLink{}, err
	}
	if _, err := s.ledger.GetPerson(req.PersonID); err != nil {
		return ledger.ShareLink{}, err
	}

	claims := Claims{
		LinkID:    uuid.NewString(),
		Kind:      KindPerson,
		TargetID:  req.PersonID,
		ExpiresMs: expMs,
		Include1:  req.IncludeTransactions,
		Include2:  req.IncludePersonalInfo,
		Protected: req.RequirePassword,
	}
	token, err := s.signer.Sign(claims)
	if err != nil {
		return ledger.ShareLink{}, err
	}

	link, err := s.ledger.AddShareLink(ledger.ShareLink{
		ID:                   claims.LinkID,
		PersonID:             req.PersonID,
		URL:                  fmt.Sprintf("%s/shared/%s?pid=%s&exp=%d&tx=%s&pi=%s", s.baseURL, token, url.QueryEscape(req.PersonID), expMs, flag(req.IncludeTransactions), flag(req.IncludePersonalInfo)),
		CreatedAt:            created,
		ExpiresAt:            expiresAt,
		IncludesTransactions: req.IncludeTransactions,
		IncludesPersonalInfo: req.IncludePersonalInfo,
		IsPasswordProtected:  req.RequirePassword,
	})
	if err != nil {
		return ledger.ShareLink{}, err
	}

	s.metrics.issued(KindPerson)
	slog.Info("Share link issued", "link_id", link.ID, "person_id", link.PersonID, "expiry_days", req.ExpiryDays, "protected", req.RequirePassword)
	return link, nil
}

// IssueExpenseLink creates a signed link to one split expense
func (s *Service) IssueExpenseLink(req IssueExpenseLinkRequest) (ledger.ExpenseShareLink, error) {
	created, expMs, expiresAt, err := s.expiry(req.ExpiryDays)
	if err != nil {
		return ledger.ExpenseShareLink{}, err
	}
	if _, err := s.ledger.GetSplitExpense(req.ExpenseID); err != nil {
		return ledger.ExpenseShareLink{}, err
	}

	claims := Claims{
		LinkID:    uuid.NewString(),
		Kind:      KindExpense,
		TargetID:  req.ExpenseID,
		ExpiresMs: expMs,
		Include1:  req.IncludeDetails,
		Include2:  req.IncludeParticipants,
		Protected: req.RequirePassword,
	}
	token, err := s.signer.Sign(claims)
	if err != nil {
		return ledger.ExpenseShareLink{}, err
	}

	link, err := s.ledger.AddExpenseShareLink(ledger.ExpenseShareLink{
		ID:                   claims.LinkID,
		ExpenseID:            req.ExpenseID,
		URL:                  fmt.Sprintf("%s/shared/expense/%s?eid=%s&exp=%d&det=%s&part=%s", s.baseURL, token, url.QueryEscape(req.ExpenseID), expMs, flag(req.IncludeDetails), flag(req.IncludeParticipants)),
		CreatedAt:            created,
		ExpiresAt:            expiresAt,
		IncludesDetails:      req.IncludeDetails,
		IncludesParticipants: req.IncludeParticipants,
		IsPasswordProtected:  req.RequirePassword,
	})
	if err != nil {
		return ledger.ExpenseShareLink{}, err
	}

	s.metrics.issued(KindExpense)
	slog.Info("Share link issued", "link_id", link.ID, "expense_id", link.ExpenseID, "expiry_days", req.ExpiryDays, "protected", req.RequirePassword)
	return link, nil
}

// ResolvePerson checks a visit to a person link and returns what it may see.
// A successful resolution counts exactly one view.
func (s *Service) ResolvePerson(token string, query url.Values, password string) (*PersonView, error) {
	claims, err := s.check(token, KindPerson, query, password, [3]string{"pid", "tx", "pi"})
	if err != nil {
		s.metrics.resolved(KindPerson, err)
		return nil, err
	}

	link, person, txs, err := s.ledger.ViewPersonLink(claims.LinkID)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrLinkNotFound, err)
		s.metrics.resolved(KindPerson, err)
		return nil, err
	}
	s.metrics.resolved(KindPerson, nil)

	view := &PersonView{
		LinkID:      link.ID,
		Views:       link.Views,
		ExpiresAt:   link.ExpiresAt,
		Name:        firstName(person.Name),
		TotalLoaned: person.TotalLoaned,
		TotalPaid:   person.TotalPaid,
		Balance:     person.Balance,
		Status:      person.Status,
		Progress:    progress(person.TotalPaid, person.TotalLoaned),
	}
	if claims.Include2 {
		view.PersonID = person.ID
		view.Name = person.Name
	}
	if claims.Include1 {
		view.Transactions = txs
	}
	return view, nil
}

// ResolveExpense checks a visit to an expense link and returns what it may see
func (s *Service) ResolveExpense(token string, query url.Values, password string) (*ExpenseView, error) {
	claims, err := s.check(token, KindExpense, query, password, [3]string{"eid", "det", "part"})
	if err != nil {
		s.metrics.resolved(KindExpense, err)
		return nil, err
	}

	link, expense, err := s.ledger.ViewExpenseLink(claims.LinkID)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrLinkNotFound, err)
		s.metrics.resolved(KindExpense, err)
		return nil, err
	}
	s.metrics.resolved(KindExpense, nil)

	view := &ExpenseView{
		LinkID:      link.ID,
		Views:       link.Views,
		ExpiresAt:   link.ExpiresAt,
		Title:       expense.Title,
		Date:        expense.Date,
		TotalAmount: expense.TotalAmount,
		Individual:  expense.IsIndividual(),
	}
	if claims.Include1 {
		outstanding := expense.Outstanding()
		view.Description = expense.Description
		view.Outstanding = &outstanding
	}
	if claims.Include2 && !expense.IsIndividual() {
		view.Participants = expense.Participants
	}
	return view, nil
}

// check runs the checks shared by both link kinds, in order: signature, expiry,
// password, then agreement between the readable query and the signed claims.
// keys names the target, first flag and second flag query parameters.
func (s *Service) check(token string, kind Kind, query url.Values, password string, keys [3]string) (*Claims, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrInvalidLink
	}

	if claims.ExpiresMs != 0 && s.ledger.Now().After(time.UnixMilli(claims.ExpiresMs)) {
		return nil, ErrLinkExpired
	}

	if claims.Protected {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
			return nil, ErrWrongPassword
		}
	}

	// Query parameters are optional, but when present they must say what was signed.
	want := map[string]string{
		"exp":   strconv.FormatInt(claims.ExpiresMs, 10),
		keys[0]: claims.TargetID,
		keys[1]: flag(claims.Include1),
		keys[2]: flag(claims.Include2),
	}
	for key, value := range want {
		if query.Has(key) && query.Get(key) != value {
			return nil, fmt.Errorf("%w: %s does not match", ErrInvalidLink, key)
		}
	}
	return claims, nil
}

// List returns every link record of both kinds
func (s *Service) List() LinksResponse {
	return LinksResponse{
		People:   s.ledger.ShareLinks(),
		Expenses: s.ledger.ExpenseShareLinks(),
	}
}

// Delete removes a link of either kind. Unknown ids are ignored.
func (s *Service) Delete(id string) {
	if s.ledger.DeleteShareLink(id) {
		slog.Info("Share link deleted", "link_id", id)
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

// progress is the share of the loaned total already paid, capped at 100
func progress(paid, loaned decimal.Decimal) int64 {
	if !loaned.IsPositive() {
		return 0
	}
	pct := paid.Div(loaned).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return min(max(pct, 0), 100)
}
