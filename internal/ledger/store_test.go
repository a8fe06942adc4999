package ledger

import (
	"errors"
	"testing"
	"time"

	"finsight/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(category string, cents int64, date time.Time) models.Transaction {
	return models.Transaction{
		UserID:      uuid.New(),
		AmountCents: cents,
		Category:    category,
		Description: "test record",
		Date:        date,
		CreatedAt:   date,
		UpdatedAt:   date,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestStoreAddAndGet(t *testing.T) {
	s := NewStore()
	require.Equal(t, uint64(0), s.Version())

	added, err := s.Add(newTx("Groceries", -5200, day(3)))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, added.ID)
	assert.Equal(t, 1, added.Version)
	assert.Equal(t, "groceries", added.Category)
	assert.Equal(t, uint64(1), s.Version())

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)

	_, err = s.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreAddValidation(t *testing.T) {
	s := NewStore()

	cases := []struct {
		name  string
		tx    models.Transaction
		field string
	}{
		{"zero amount", newTx("food", 0, day(1)), "amount"},
		{"blank category", newTx("   ", -100, day(1)), "category"},
		{"zero date", newTx("food", -100, time.Time{}), "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add(tc.tx)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	// Rejected mutations must not advance the version.
	assert.Equal(t, uint64(0), s.Version())
}

func TestStoreEdit(t *testing.T) {
	s := NewStore()
	added, err := s.Add(newTx("groceries", -5200, day(3)))
	require.NoError(t, err)

	amount := int64(-6000)
	category := "Dining"
	edited, err := s.Edit(added.ID, models.TransactionPatch{
		AmountCents: &amount,
		Category:    &category,
	}, day(4))
	require.NoError(t, err)
	assert.Equal(t, 2, edited.Version)
	assert.Equal(t, int64(-6000), edited.AmountCents)
	assert.Equal(t, "dining", edited.Category)
	assert.Equal(t, added.Date, edited.Date)
	assert.Equal(t, uint64(2), s.Version())
}

func TestStoreEditAllOrNothing(t *testing.T) {
	s := NewStore()
	added, err := s.Add(newTx("groceries", -5200, day(3)))
	require.NoError(t, err)
	versionBefore := s.Version()

	bad := int64(0)
	category := "dining"
	_, err = s.Edit(added.ID, models.TransactionPatch{
		AmountCents: &bad,
		Category:    &category,
	}, day(4))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	// The record keeps its pre-edit state entirely.
	got, err := s.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)
	assert.Equal(t, versionBefore, s.Version())
}

func TestStoreEditMissing(t *testing.T) {
	s := NewStore()
	amount := int64(-100)

	_, err := s.Edit(uuid.New(), models.TransactionPatch{AmountCents: &amount}, day(1))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Edit(uuid.New(), models.TransactionPatch{}, day(1))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "patch", ve.Field)
}

func TestStoreRemoveTombstones(t *testing.T) {
	s := NewStore()
	added, err := s.Add(newTx("groceries", -5200, day(3)))
	require.NoError(t, err)

	removed, err := s.Remove(added.ID, day(5))
	require.NoError(t, err)
	assert.True(t, removed.Deleted)
	assert.Equal(t, 2, removed.Version)

	_, err = s.Get(added.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Remove(added.ID, day(5))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, s.View().Transactions)

	all := s.AllTransactions()
	require.Len(t, all, 1)
	assert.True(t, all[0].Deleted)
}

func TestStoreSetBudget(t *testing.T) {
	s := NewStore()
	period := models.Period{Year: 2024, Month: time.March}

	b, err := s.SetBudget(models.Budget{Category: "Groceries", Period: period, LimitCents: 50000})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Version)
	assert.Equal(t, "groceries", b.Category)

	// Upsert replaces the limit for the same (category, period).
	b, err = s.SetBudget(models.Budget{Category: "groceries", Period: period, LimitCents: 60000})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Version)

	budgets := s.Budgets(period)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(60000), budgets[0].LimitCents)

	_, err = s.SetBudget(models.Budget{Category: "fun", Period: period, LimitCents: -1})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "limit", ve.Field)

	_, err = s.SetBudget(models.Budget{Category: "fun", LimitCents: 100})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "period", ve.Field)
}

func TestStoreBudgetsAcrossPeriods(t *testing.T) {
	s := NewStore()
	mar := models.Period{Year: 2024, Month: time.March}
	apr := models.Period{Year: 2024, Month: time.April}

	_, err := s.SetBudget(models.Budget{Category: "rent", Period: apr, LimitCents: 120000})
	require.NoError(t, err)
	_, err = s.SetBudget(models.Budget{Category: "food", Period: mar, LimitCents: 50000})
	require.NoError(t, err)
	_, err = s.SetBudget(models.Budget{Category: "rent", Period: mar, LimitCents: 120000})
	require.NoError(t, err)

	all := s.Budgets(models.Period{})
	require.Len(t, all, 3)
	assert.Equal(t, "food", all[0].Category)
	assert.Equal(t, mar, all[0].Period)
	assert.Equal(t, "rent", all[1].Category)
	assert.Equal(t, apr, all[2].Period)

	assert.Len(t, s.Budgets(mar), 2)
	assert.Len(t, s.Budgets(apr), 1)
}

func TestStoreVersionMonotonic(t *testing.T) {
	s := NewStore()
	period := models.Period{Year: 2024, Month: time.March}

	added, err := s.Add(newTx("food", -100, day(1)))
	require.NoError(t, err)
	require.NoError(t, s.CheckVersion(1))

	_, err = s.SetBudget(models.Budget{Category: "food", Period: period, LimitCents: 1000})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Version())
	assert.ErrorIs(t, s.CheckVersion(1), ErrStaleVersion)

	amount := int64(-200)
	_, err = s.Edit(added.ID, models.TransactionPatch{AmountCents: &amount}, day(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), s.Version())

	_, err = s.Remove(added.ID, day(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), s.Version())
	require.NoError(t, s.CheckVersion(4))
}

func TestStoreViewDeterministic(t *testing.T) {
	s := NewStore()
	// Inserted out of date order on purpose.
	_, err := s.Add(newTx("b", -300, day(10)))
	require.NoError(t, err)
	_, err = s.Add(newTx("a", -100, day(2)))
	require.NoError(t, err)
	_, err = s.Add(newTx("c", -200, day(7)))
	require.NoError(t, err)

	v1 := s.View()
	v2 := s.View()
	assert.Equal(t, v1, v2)

	require.Len(t, v1.Transactions, 3)
	assert.True(t, v1.Transactions[0].Date.Before(v1.Transactions[1].Date))
	assert.True(t, v1.Transactions[1].Date.Before(v1.Transactions[2].Date))

	// Views are copies: mutating one must not leak into the store.
	v1.Transactions[0].AmountCents = 999999
	fresh := s.View()
	assert.Equal(t, int64(-100), fresh.Transactions[0].AmountCents)
}

func TestStoreRecentAndList(t *testing.T) {
	s := NewStore()
	for d := 1; d <= 5; d++ {
		_, err := s.Add(newTx("food", int64(-100*d), day(d)))
		require.NoError(t, err)
	}

	recent := s.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, day(5), recent[0].Date)
	assert.Equal(t, day(4), recent[1].Date)

	page := s.List(2, 2)
	require.Len(t, page, 2)
	assert.Equal(t, day(3), page[0].Date)

	assert.Empty(t, s.List(10, 99))
	assert.Len(t, s.List(-1, 0), 5)
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	s := NewStore()
	period := models.Period{Year: 2024, Month: time.March}

	added, err := s.Add(newTx("food", -100, day(1)))
	require.NoError(t, err)
	_, err = s.Add(newTx("rent", -120000, day(2)))
	require.NoError(t, err)
	_, err = s.Remove(added.ID, day(3))
	require.NoError(t, err)
	_, err = s.SetBudget(models.Budget{Category: "food", Period: period, LimitCents: 1000})
	require.NoError(t, err)

	restored := Restore(s.Version(), s.AllTransactions(), s.AllBudgets())

	assert.Equal(t, s.Version(), restored.Version())
	assert.Equal(t, s.View(), restored.View())
	assert.Equal(t, s.AllTransactions(), restored.AllTransactions())

	// Tombstones stay dead after a restore.
	_, err = restored.Get(added.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidationErrorMessage(t *testing.T) {
	err := error(&ValidationError{Field: "amount", Reason: "must be non-zero"})
	assert.Equal(t, "invalid amount: must be non-zero", err.Error())
	assert.False(t, errors.Is(err, ErrNotFound))
}
