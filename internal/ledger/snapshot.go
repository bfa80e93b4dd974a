package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the export document: the complete ledger state
type Snapshot struct {
	People              []Person                 `json:"people"`
	Transactions        map[string][]Transaction `json:"transactions"`
	SharedLinks         []ShareLink              `json:"sharedLinks"`
	SharedSplitExpenses []ExpenseShareLink       `json:"sharedSplitExpenses"`
	SplitExpenses       []SplitExpense           `json:"splitExpenses"`
	ExportDate          time.Time                `json:"exportDate"`
}

// requiredImportKeys must all be present and non-null in an import document
var requiredImportKeys = []string{"people", "transactions", "sharedLinks", "sharedSplitExpenses", "splitExpenses"}

// Export captures the whole state. Collections are never nil so they encode as [] and {}.
func (l *Ledger) Export() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		People:              derefAll(l.people),
		Transactions:        make(map[string][]Transaction, len(l.transactions)),
		SharedLinks:         derefAll(l.shareLinks),
		SharedSplitExpenses: derefAll(l.expenseLinks),
		SplitExpenses:       make([]SplitExpense, len(l.expenses)),
		ExportDate:          l.now().UTC(),
	}
	for id, txs := range l.transactions {
		s.Transactions[id] = derefAll(txs)
	}
	for i, e := range l.expenses {
		s.SplitExpenses[i] = cloneExpense(e)
	}
	return s
}

// ParseSnapshot decodes an import document. Every collection key must be present and
// non-null; the export date is informational and may be missing.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for _, key := range requiredImportKeys {
		v, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrMissingImportKey, key)
		}
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return s, nil
}

// Import parses a document and replaces the state with it. A rejected document
// leaves the ledger untouched.
func (l *Ledger) Import(data []byte) error {
	s, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	l.Restore(s)
	return nil
}

// Restore replaces the whole state with the snapshot as given. Stored totals are kept
// until the person's next mutation refolds them; Reconcile reports the difference.
func (l *Ledger) Restore(s Snapshot) {
	people := make([]*Person, len(s.People))
	for i := range s.People {
		p := s.People[i]
		people[i] = &p
	}
	transactions := make(map[string][]*Transaction, len(s.Transactions))
	for id, txs := range s.Transactions {
		rows := make([]*Transaction, len(txs))
		for i := range txs {
			tx := txs[i]
			rows[i] = &tx
		}
		transactions[id] = rows
	}
	links := make([]*ShareLink, len(s.SharedLinks))
	for i := range s.SharedLinks {
		link := s.SharedLinks[i]
		links[i] = &link
	}
	expenseLinks := make([]*ExpenseShareLink, len(s.SharedSplitExpenses))
	for i := range s.SharedSplitExpenses {
		link := s.SharedSplitExpenses[i]
		expenseLinks[i] = &link
	}
	expenses := make([]*SplitExpense, len(s.SplitExpenses))
	for i := range s.SplitExpenses {
		e := cloneExpense(&s.SplitExpenses[i])
		if e.Participants == nil {
			e.Participants = []Participant{}
		}
		expenses[i] = &e
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.people = people
	l.transactions = transactions
	l.shareLinks = links
	l.expenseLinks = expenseLinks
	l.expenses = expenses
}
