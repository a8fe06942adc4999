package repository

import (
	"context"
	"errors"
	"fmt"

	"finsight/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LedgerRepository persists ledger state behind the in-memory store.
// Records are written through one at a time, each together with the
// store version that produced it, so a reload reconstructs the exact
// state including tombstones.
type LedgerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLedgerRepository(db *pgxpool.Pool, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

// Load reads the user's full ledger: the stored version counter, every
// transaction including tombstoned ones, and every budget.
func (r *LedgerRepository) Load(ctx context.Context, userID uuid.UUID) (uint64, []models.Transaction, []models.Budget, error) {
	version, err := r.loadVersion(ctx, userID)
	if err != nil {
		return 0, nil, nil, err
	}

	transactions, err := r.loadTransactions(ctx, userID)
	if err != nil {
		return 0, nil, nil, err
	}

	budgets, err := r.loadBudgets(ctx, userID)
	if err != nil {
		return 0, nil, nil, err
	}

	return version, transactions, budgets, nil
}

func (r *LedgerRepository) loadVersion(ctx context.Context, userID uuid.UUID) (uint64, error) {
	query := squirrel.Select("version").
		From("ledgers").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var version int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(version), nil
}

func (r *LedgerRepository) loadTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	query := squirrel.Select("id", "user_id", "amount_cents", "category", "description", "account", "date", "version", "deleted", "created_at", "updated_at").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.AmountCents, &tx.Category, &tx.Description, &tx.Account, &tx.Date, &tx.Version, &tx.Deleted, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func (r *LedgerRepository) loadBudgets(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	query := squirrel.Select("category", "period", "limit_cents", "version", "updated_at").
		From("budgets").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("period ASC", "category ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		var period string
		if err := rows.Scan(&b.Category, &period, &b.LimitCents, &b.Version, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Period, err = models.ParsePeriod(period)
		if err != nil {
			return nil, fmt.Errorf("corrupt budget period %q: %w", period, err)
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

// SaveTransaction upserts one record and advances the stored ledger
// version in the same database transaction.
func (r *LedgerRepository) SaveTransaction(ctx context.Context, userID uuid.UUID, record models.Transaction, version uint64) error {
	query := squirrel.Insert("transactions").
		Columns("id", "user_id", "amount_cents", "category", "description", "account", "date", "version", "deleted", "created_at", "updated_at").
		Values(record.ID, userID, record.AmountCents, record.Category, record.Description, record.Account, record.Date, record.Version, record.Deleted, record.CreatedAt, record.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			amount_cents = EXCLUDED.amount_cents,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			account = EXCLUDED.account,
			date = EXCLUDED.date,
			version = EXCLUDED.version,
			deleted = EXCLUDED.deleted,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.inTx(ctx, userID, version, sql, args)
}

// SaveBudget upserts one budget row and advances the stored ledger
// version in the same database transaction.
func (r *LedgerRepository) SaveBudget(ctx context.Context, userID uuid.UUID, budget models.Budget, version uint64) error {
	query := squirrel.Insert("budgets").
		Columns("user_id", "category", "period", "limit_cents", "version", "updated_at").
		Values(userID, budget.Category, budget.Period.String(), budget.LimitCents, budget.Version, budget.UpdatedAt).
		Suffix(`ON CONFLICT (user_id, category, period) DO UPDATE SET
			limit_cents = EXCLUDED.limit_cents,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.inTx(ctx, userID, version, sql, args)
}

// inTx runs the record upsert and the ledger version upsert atomically.
func (r *LedgerRepository) inTx(ctx context.Context, userID uuid.UUID, version uint64, recordSQL string, recordArgs []interface{}) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, recordSQL, recordArgs...); err != nil {
		return err
	}

	versionQuery := squirrel.Insert("ledgers").
		Columns("user_id", "version", "updated_at").
		Values(userID, int64(version), squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := versionQuery.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
