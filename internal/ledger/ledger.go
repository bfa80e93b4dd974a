// Package ledger is the in-memory engine behind loanbook. It owns people, their
// loans and payments, installment plans, split expenses and share-link records,
// and keeps every person's totals equal to the fold of their transactions.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger holds the whole application state. All methods are safe for concurrent use;
// every operation runs to completion under a single lock.
type Ledger struct {
	mu     sync.RWMutex
	policy Policy
	now    func() time.Time
	newID  func() string

	people       []*Person
	transactions map[string][]*Transaction // keyed by person id
	shareLinks   []*ShareLink
	expenseLinks []*ExpenseShareLink
	expenses     []*SplitExpense
}

// Option configures a Ledger
type Option func(*Ledger)

// WithPolicy sets the payment counting policy
func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// New creates an empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		policy:       DefaultPolicy(),
		now:          time.Now,
		newID:        uuid.NewString,
		transactions: make(map[string][]*Transaction),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the active payment counting policy
func (l *Ledger) Policy() Policy {
	return l.policy
}

// Now returns the ledger clock's current time
func (l *Ledger) Now() time.Time {
	return l.now()
}

// =============================================================================
// PEOPLE
// =============================================================================

// CreatePerson registers a person with zero totals
func (l *Ledger) CreatePerson(name string) (Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Person{}, ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := &Person{ID: l.newID(), Name: name}
	p.setTotals(Totals{Loaned: decimal.Zero, Paid: decimal.Zero})
	l.people = append(l.people, p)
	l.transactions[p.ID] = nil
	return *p, nil
}

// GetPerson returns a copy of the person
func (l *Ledger) GetPerson(id string) (Person, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p := l.person(id)
	if p == nil {
		return Person{}, ErrPersonNotFound
	}
	return *p, nil
}

// ListPeople returns every person in creation order
func (l *Ledger) ListPeople() []Person {
	l.mu.RLock()
	defer l.mu.RUnlock()

	people := make([]Person, len(l.people))
	for i, p := range l.people {
		people[i] = *p
	}
	return people
}

// DeletePerson removes the person, their transactions and the share links pointing
// at them. Unknown ids are ignored; the result reports whether anything was removed.
func (l *Ledger) DeletePerson(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := len(l.people)
	l.people = slices.DeleteFunc(l.people, func(p *Person) bool { return p.ID == id })
	_, hadTransactions := l.transactions[id]
	delete(l.transactions, id)
	l.shareLinks = slices.DeleteFunc(l.shareLinks, func(s *ShareLink) bool { return s.PersonID == id })

	return len(l.people) != before || hadTransactions
}

func (l *Ledger) person(id string) *Person {
	for _, p := range l.people {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// NewTransaction is the input for AddTransaction
type NewTransaction struct {
	PersonID    string
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Status      Status // Defaults to Paid for payments
	Scheduled   bool   // Records a future payment as pending
}

// Transactions returns a copy of a person's transactions in insertion order
func (l *Ledger) Transactions(personID string) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.person(personID) == nil {
		return nil, ErrPersonNotFound
	}
	return derefAll(l.transactions[personID]), nil
}

// GetTransaction returns one transaction of a person
func (l *Ledger) GetTransaction(personID, txID string) (Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.person(personID) == nil {
		return Transaction{}, ErrPersonNotFound
	}
	_, tx := l.find(personID, txID)
	if tx == nil {
		return Transaction{}, ErrTransactionNotFound
	}
	return *tx, nil
}

// AddTransaction records a loan or payment and updates the person's totals.
// Nothing changes when the person does not exist.
func (l *Ledger) AddTransaction(in NewTransaction) (Transaction, error) {
	tx := Transaction{
		PersonID:    in.PersonID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		Status:      in.Status,
	}
	if in.Type == TypePayment {
		if in.Scheduled {
			tx.Status = StatusPending
			tx.Scheduled = true
			tx.Description = markScheduled(in.Description)
		} else if tx.Status == "" {
			tx.Status = StatusPaid
		}
	}
	if err := validateTransaction(&tx); err != nil {
		return Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(in.PersonID)
	if p == nil {
		return Transaction{}, ErrPersonNotFound
	}
	tx.ID = l.newID()
	l.insert(p, &tx)
	return tx, nil
}

// DeleteTransaction removes a transaction and updates the totals.
// Unknown ids are ignored; the result reports whether anything was removed.
func (l *Ledger) DeleteTransaction(personID, txID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.remove(personID, txID) != nil
}

// UpdateTransaction replaces a transaction by id and refolds the totals. The person
// cannot change.
func (l *Ledger) UpdateTransaction(personID string, updated Transaction) (Transaction, error) {
	updated.PersonID = personID
	if err := validateTransaction(&updated); err != nil {
		return Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(personID)
	if p == nil {
		return Transaction{}, ErrPersonNotFound
	}
	i, old := l.find(personID, updated.ID)
	if old == nil {
		return Transaction{}, ErrTransactionNotFound
	}

	stored := updated
	l.transactions[personID][i] = &stored
	l.refold(p)
	return stored, nil
}

// ReplaceTransactions swaps a person's whole transaction list and refolds the totals
func (l *Ledger) ReplaceTransactions(personID string, txs []Transaction) error {
	for i := range txs {
		txs[i].PersonID = personID
		if err := validateTransaction(&txs[i]); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(personID)
	if p == nil {
		return ErrPersonNotFound
	}
	rows := make([]*Transaction, len(txs))
	for i := range txs {
		tx := txs[i]
		if tx.ID == "" {
			tx.ID = l.newID()
		}
		rows[i] = &tx
	}
	l.transactions[personID] = rows
	l.refold(p)
	return nil
}

// insert appends a validated transaction and refolds the totals. Caller holds the lock.
func (l *Ledger) insert(p *Person, tx *Transaction) {
	stored := *tx
	l.transactions[p.ID] = append(l.transactions[p.ID], &stored)
	l.refold(p)
}

// remove deletes a transaction and refolds the totals. Caller holds the lock.
func (l *Ledger) remove(personID, txID string) *Transaction {
	i, tx := l.find(personID, txID)
	if tx == nil {
		return nil
	}
	l.transactions[personID] = slices.Delete(l.transactions[personID], i, i+1)
	if p := l.person(personID); p != nil {
		l.refold(p)
	}
	return tx
}

func (l *Ledger) find(personID, txID string) (int, *Transaction) {
	for i, tx := range l.transactions[personID] {
		if tx.ID == txID {
			return i, tx
		}
	}
	return -1, nil
}

func validateTransaction(tx *Transaction) error {
	if tx.Type != TypeLoan && tx.Type != TypePayment {
		return ErrInvalidType
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if tx.Date.IsZero() {
		return ErrMissingDate
	}
	if tx.Status != "" && tx.Status != StatusPaid && tx.Status != StatusPending {
		return ErrInvalidStatus
	}
	return nil
}

func derefAll[T any](rows []*T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}
