package ledger

import "slices"

// AddShareLink stores an issued person link. The person must exist; its name is
// copied onto the record.
func (l *Ledger) AddShareLink(link ShareLink) (ShareLink, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.person(link.PersonID)
	if p == nil {
		return ShareLink{}, ErrPersonNotFound
	}
	if link.ID == "" {
		link.ID = l.newID()
	}
	link.PersonName = p.Name
	stored := link
	l.shareLinks = append(l.shareLinks, &stored)
	return stored, nil
}

// AddExpenseShareLink stores an issued expense link
func (l *Ledger) AddExpenseShareLink(link ExpenseShareLink) (ExpenseShareLink, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.expense(link.ExpenseID)
	if e == nil {
		return ExpenseShareLink{}, ErrSplitExpenseNotFound
	}
	if link.ID == "" {
		link.ID = l.newID()
	}
	link.ExpenseTitle = e.Title
	stored := link
	l.expenseLinks = append(l.expenseLinks, &stored)
	return stored, nil
}

// ShareLinks returns every person link in issue order
func (l *Ledger) ShareLinks() []ShareLink {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return derefAll(l.shareLinks)
}

// ExpenseShareLinks returns every expense link in issue order
func (l *Ledger) ExpenseShareLinks() []ExpenseShareLink {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return derefAll(l.expenseLinks)
}

// ShareLink returns one person link record
func (l *Ledger) ShareLink(id string) (ShareLink, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.shareLinks {
		if s.ID == id {
			return *s, nil
		}
	}
	return ShareLink{}, ErrShareLinkNotFound
}

// ExpenseShareLink returns one expense link record
func (l *Ledger) ExpenseShareLink(id string) (ExpenseShareLink, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.expenseLinks {
		if s.ID == id {
			return *s, nil
		}
	}
	return ExpenseShareLink{}, ErrShareLinkNotFound
}

// DeleteShareLink removes a link of either kind. Unknown ids are ignored.
func (l *Ledger) DeleteShareLink(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := len(l.shareLinks) + len(l.expenseLinks)
	l.shareLinks = slices.DeleteFunc(l.shareLinks, func(s *ShareLink) bool { return s.ID == id })
	l.expenseLinks = slices.DeleteFunc(l.expenseLinks, func(s *ExpenseShareLink) bool { return s.ID == id })
	return len(l.shareLinks)+len(l.expenseLinks) != before
}

// ViewPersonLink counts one view of a person link and returns the link together with
// the person and their transactions, read under the same lock.
func (l *Ledger) ViewPersonLink(id string) (ShareLink, Person, []Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.shareLinks, func(s *ShareLink) bool { return s.ID == id })
	if i < 0 {
		return ShareLink{}, Person{}, nil, ErrShareLinkNotFound
	}
	link := l.shareLinks[i]
	p := l.person(link.PersonID)
	if p == nil {
		return ShareLink{}, Person{}, nil, ErrPersonNotFound
	}
	link.Views++
	return *link, *p, derefAll(l.transactions[p.ID]), nil
}

// ViewExpenseLink counts one view of an expense link and returns it with the expense
func (l *Ledger) ViewExpenseLink(id string) (ExpenseShareLink, SplitExpense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.expenseLinks, func(s *ExpenseShareLink) bool { return s.ID == id })
	if i < 0 {
		return ExpenseShareLink{}, SplitExpense{}, ErrShareLinkNotFound
	}
	link := l.expenseLinks[i]
	e := l.expense(link.ExpenseID)
	if e == nil {
		return ExpenseShareLink{}, SplitExpense{}, ErrSplitExpenseNotFound
	}
	link.Views++
	return *link, cloneExpense(e), nil
}
