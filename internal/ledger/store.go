package ledger

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"finsight/internal/models"

	"github.com/google/uuid"
)

type budgetKey struct {
	category string
	period   models.Period
}

// Store is the in-memory ledger for one user. Records are kept as
// values, so nothing handed out can alias internal state. All methods
// are safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	version      uint64
	transactions map[uuid.UUID]models.Transaction
	budgets      map[budgetKey]models.Budget
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[uuid.UUID]models.Transaction),
		budgets:      make(map[budgetKey]models.Budget),
	}
}

// Restore rebuilds a store from persisted records, tombstones included.
// The version is taken as-is so previously cached snapshots stay
// attributable to the right state.
func Restore(version uint64, transactions []models.Transaction, budgets []models.Budget) *Store {
	s := NewStore()
	for _, tx := range transactions {
		tx.Category = models.NormalizeCategory(tx.Category)
		s.transactions[tx.ID] = tx
	}
	for _, b := range budgets {
		b.Category = models.NormalizeCategory(b.Category)
		s.budgets[budgetKey{b.Category, b.Period}] = b
	}
	s.version = version
	return s
}

// View is a consistent point-in-time copy of the live records, sorted
// deterministically. It is safe to share across goroutines.
type View struct {
	Version      uint64
	Transactions []models.Transaction // date asc, then created_at, then id
	Budgets      []models.Budget      // period asc, then category
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{Version: s.version}
	v.Transactions = s.liveLocked()
	sortTransactionsAsc(v.Transactions)

	v.Budgets = make([]models.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		v.Budgets = append(v.Budgets, b)
	}
	sortBudgets(v.Budgets)
	return v
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// CheckVersion guards optimistic callers that captured the version
// earlier and must not act on stale data.
func (s *Store) CheckVersion(v uint64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v != s.version {
		return ErrStaleVersion
	}
	return nil
}

// Add validates and inserts a new record. The stored copy is returned
// with its record version set.
func (s *Store) Add(tx models.Transaction) (models.Transaction, error) {
	tx.Category = models.NormalizeCategory(tx.Category)
	if err := validateTransaction(tx); err != nil {
		return models.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if _, exists := s.transactions[tx.ID]; exists {
		return models.Transaction{}, &ValidationError{Field: "id", Reason: "already exists"}
	}
	tx.Version = 1
	tx.Deleted = false
	s.transactions[tx.ID] = tx
	s.version++
	return tx, nil
}

func (s *Store) Get(id uuid.UUID) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok || tx.Deleted {
		return models.Transaction{}, ErrNotFound
	}
	return tx, nil
}

// Edit applies the patch all-or-nothing: the patched record is validated
// first and the stored one is left untouched when validation fails.
func (s *Store) Edit(id uuid.UUID, patch models.TransactionPatch, now time.Time) (models.Transaction, error) {
	if patch.Empty() {
		return models.Transaction{}, &ValidationError{Field: "patch", Reason: "no fields to update"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.transactions[id]
	if !ok || current.Deleted {
		return models.Transaction{}, ErrNotFound
	}

	next := current
	if patch.AmountCents != nil {
		next.AmountCents = *patch.AmountCents
	}
	if patch.Category != nil {
		next.Category = models.NormalizeCategory(*patch.Category)
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Account != nil {
		next.Account = *patch.Account
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if err := validateTransaction(next); err != nil {
		return models.Transaction{}, err
	}

	next.Version = current.Version + 1
	next.UpdatedAt = now
	s.transactions[id] = next
	s.version++
	return next, nil
}

// Remove tombstones the record. The row survives for restore but
// disappears from every read path. The tombstoned copy is returned for
// the persistence boundary.
func (s *Store) Remove(id uuid.UUID, now time.Time) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.Deleted {
		return models.Transaction{}, ErrNotFound
	}
	tx.Deleted = true
	tx.Version++
	tx.UpdatedAt = now
	s.transactions[id] = tx
	s.version++
	return tx, nil
}

// SetBudget inserts or replaces the limit for (category, period).
func (s *Store) SetBudget(b models.Budget) (models.Budget, error) {
	b.Category = models.NormalizeCategory(b.Category)
	if err := validateBudget(b); err != nil {
		return models.Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := budgetKey{b.Category, b.Period}
	if current, ok := s.budgets[key]; ok {
		b.Version = current.Version + 1
	} else {
		b.Version = 1
	}
	s.budgets[key] = b
	s.version++
	return b, nil
}

// Budgets lists budgets for one period, or for every period when the
// zero value is passed.
func (s *Store) Budgets(period models.Period) []models.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		if period.IsZero() || b.Period == period {
			out = append(out, b)
		}
	}
	sortBudgets(out)
	return out
}

// Recent returns up to n live records, newest first.
func (s *Store) Recent(n int) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.liveLocked()
	sortTransactionsDesc(live)
	if n >= 0 && len(live) > n {
		live = live[:n]
	}
	return live
}

// List pages through live records, newest first.
func (s *Store) List(limit, offset int) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.liveLocked()
	sortTransactionsDesc(live)
	if offset >= len(live) {
		return []models.Transaction{}
	}
	live = live[offset:]
	if limit >= 0 && len(live) > limit {
		live = live[:limit]
	}
	return live
}

// AllTransactions returns every record including tombstones, for the
// persistence boundary.
func (s *Store) AllTransactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	sortTransactionsAsc(out)
	return out
}

// AllBudgets returns every budget, for the persistence boundary.
func (s *Store) AllBudgets() []models.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	sortBudgets(out)
	return out
}

func (s *Store) liveLocked() []models.Transaction {
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if !tx.Deleted {
			out = append(out, tx)
		}
	}
	return out
}

func validateTransaction(tx models.Transaction) error {
	if tx.AmountCents == 0 {
		return &ValidationError{Field: "amount", Reason: "must be non-zero"}
	}
	if tx.Category == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if tx.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be set"}
	}
	return nil
}

func validateBudget(b models.Budget) error {
	if b.Category == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if b.Period.IsZero() {
		return &ValidationError{Field: "period", Reason: "must be set"}
	}
	if b.LimitCents < 0 {
		return &ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	return nil
}

func sortTransactionsAsc(txs []models.Transaction) {
	sort.Slice(txs, func(i, j int) bool { return txLess(txs[i], txs[j]) })
}

func sortTransactionsDesc(txs []models.Transaction) {
	sort.Slice(txs, func(i, j int) bool { return txLess(txs[j], txs[i]) })
}

func txLess(a, b models.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func sortBudgets(budgets []models.Budget) {
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Period != budgets[j].Period {
			return budgets[i].Period.Before(budgets[j].Period)
		}
		return budgets[i].Category < budgets[j].Category
	})
}
