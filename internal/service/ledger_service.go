package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finsight/internal/dto"
	"finsight/internal/ledger"
	"finsight/internal/models"
	"finsight/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// LedgerService owns one in-memory ledger per user. Stores are hydrated
// from Postgres on first touch and stay authoritative for the process
// lifetime; every mutation is written through to the repository after
// it has committed in memory.
type LedgerService struct {
	repo      *repository.LedgerRepository
	analytics *AnalyticsService
	insights  *InsightService
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*ledger.Store
}

func NewLedgerService(repo *repository.LedgerRepository, analytics *AnalyticsService, insights *InsightService, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		repo:      repo,
		analytics: analytics,
		insights:  insights,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*ledger.Store),
	}
}

// session returns the user's store, loading it from the repository on
// first use.
func (s *LedgerService) session(ctx context.Context, userID uuid.UUID) (*ledger.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.sessions[userID]; ok {
		return store, nil
	}

	version, transactions, budgets, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	store := ledger.Restore(version, transactions, budgets)
	s.sessions[userID] = store

	s.logger.Info("Ledger session hydrated",
		zap.String("user_id", userID.String()),
		zap.Uint64("version", version),
		zap.Int("transactions", len(transactions)),
		zap.Int("budgets", len(budgets)),
	)
	return store, nil
}

// AddTransaction validates, commits to memory, then writes through.
func (s *LedgerService) AddTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (models.Transaction, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}

	cents, err := models.ParseAmount(req.Amount)
	if err != nil {
		return models.Transaction{}, &ledger.ValidationError{Field: "amount", Reason: err.Error()}
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return models.Transaction{}, &ledger.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}

	now := time.Now().UTC()
	tx := models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		AmountCents: cents,
		Category:    req.Category,
		Description: req.Description,
		Account:     req.Account,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	added, err := store.Add(tx)
	if err != nil {
		return models.Transaction{}, err
	}

	if err := s.persistTransaction(ctx, userID, store, added); err != nil {
		return models.Transaction{}, err
	}

	s.logger.Info("Transaction added",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", added.ID.String()),
		zap.String("category", added.Category),
		zap.Int64("amount_cents", added.AmountCents),
	)
	return added, nil
}

// EditTransaction applies a partial update. Store.Edit is all or
// nothing, so a bad field leaves the record untouched.
func (s *LedgerService) EditTransaction(ctx context.Context, userID, id uuid.UUID, req *dto.UpdateTransactionRequest) (models.Transaction, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}

	var patch models.TransactionPatch
	if req.Amount != nil {
		cents, err := models.ParseAmount(*req.Amount)
		if err != nil {
			return models.Transaction{}, &ledger.ValidationError{Field: "amount", Reason: err.Error()}
		}
		patch.AmountCents = &cents
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return models.Transaction{}, &ledger.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
		}
		patch.Date = &date
	}
	patch.Category = req.Category
	patch.Description = req.Description
	patch.Account = req.Account

	edited, err := store.Edit(id, patch, time.Now().UTC())
	if err != nil {
		return models.Transaction{}, err
	}

	if err := s.persistTransaction(ctx, userID, store, edited); err != nil {
		return models.Transaction{}, err
	}

	s.logger.Info("Transaction edited",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", edited.ID.String()),
	)
	return edited, nil
}

// RemoveTransaction tombstones the record; history keeps it, queries
// and aggregates stop seeing it.
func (s *LedgerService) RemoveTransaction(ctx context.Context, userID, id uuid.UUID) error {
	store, err := s.session(ctx, userID)
	if err != nil {
		return err
	}

	removed, err := store.Remove(id, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := s.persistTransaction(ctx, userID, store, removed); err != nil {
		return err
	}

	s.logger.Info("Transaction removed",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", id.String()),
	)
	return nil
}

// GetTransaction returns one live record.
func (s *LedgerService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (models.Transaction, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	return store.Get(id)
}

// ListTransactions returns a page of live records plus the ledger
// version the page was read at.
func (s *LedgerService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, uint64, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return store.List(limit, offset), store.Version(), nil
}

// SetBudget creates or replaces the limit for (category, period).
func (s *LedgerService) SetBudget(ctx context.Context, userID uuid.UUID, req *dto.SetBudgetRequest) (models.Budget, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return models.Budget{}, err
	}

	limit, err := models.ParseAmount(req.Limit)
	if err != nil {
		return models.Budget{}, &ledger.ValidationError{Field: "limit", Reason: err.Error()}
	}
	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		return models.Budget{}, &ledger.ValidationError{Field: "period", Reason: "expected YYYY-MM"}
	}

	budget, err := store.SetBudget(models.Budget{
		Category:   req.Category,
		Period:     period,
		LimitCents: limit,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return models.Budget{}, err
	}

	if err := s.repo.SaveBudget(ctx, userID, budget, store.Version()); err != nil {
		s.logger.Error("Failed to persist budget",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("category", budget.Category),
		)
		return models.Budget{}, fmt.Errorf("failed to persist budget: %w", err)
	}

	s.logger.Info("Budget set",
		zap.String("user_id", userID.String()),
		zap.String("category", budget.Category),
		zap.String("period", budget.Period.String()),
		zap.Int64("limit_cents", budget.LimitCents),
	)
	return budget, nil
}

// Budgets lists budgets for a period; a zero period means all periods.
func (s *LedgerService) Budgets(ctx context.Context, userID uuid.UUID, period models.Period) ([]models.Budget, uint64, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return store.Budgets(period), store.Version(), nil
}

// CurrentView returns an immutable copy of the user's ledger state.
func (s *LedgerService) CurrentView(ctx context.Context, userID uuid.UUID) (ledger.View, error) {
	store, err := s.session(ctx, userID)
	if err != nil {
		return ledger.View{}, err
	}
	return store.View(), nil
}

// Snapshot aggregates one period of the user's ledger.
func (s *LedgerService) Snapshot(ctx context.Context, userID uuid.UUID, period models.Period) (models.Snapshot, error) {
	view, err := s.CurrentView(ctx, userID)
	if err != nil {
		return models.Snapshot{}, err
	}
	return s.analytics.Snapshot(userID, view, period), nil
}

// Insights derives the rule-based observations for a period, comparing
// against the period before it.
func (s *LedgerService) Insights(ctx context.Context, userID uuid.UUID, period models.Period) ([]models.Insight, uint64, error) {
	view, err := s.CurrentView(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	current := s.analytics.Snapshot(userID, view, period)
	previous := s.analytics.Snapshot(userID, view, period.Previous())
	return s.insights.Derive(current, previous), view.Version, nil
}

// Trends returns daily spending for the trailing window.
func (s *LedgerService) Trends(ctx context.Context, userID uuid.UUID, days int) ([]models.DailySpend, error) {
	if days <= 0 {
		days = 30
	}
	view, err := s.CurrentView(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.analytics.DailySeries(view, now.AddDate(0, 0, -days), now), nil
}

// PeriodSeries returns monthly totals for the n periods ending at end.
func (s *LedgerService) PeriodSeries(ctx context.Context, userID uuid.UUID, end models.Period, n int) ([]models.PeriodTotal, error) {
	view, err := s.CurrentView(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.analytics.PeriodSeries(view, end, n)
}

// Forecast projects next-period category spend from recent history.
func (s *LedgerService) Forecast(ctx context.Context, userID uuid.UUID, period models.Period, lookback int) ([]models.CategoryForecast, error) {
	view, err := s.CurrentView(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.analytics.Forecast(view, period, lookback), nil
}

// Anomalies lists outlier expenses for the period.
func (s *LedgerService) Anomalies(ctx context.Context, userID uuid.UUID, period models.Period) ([]models.Anomaly, error) {
	view, err := s.CurrentView(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.analytics.Anomalies(view, period), nil
}

// persistTransaction writes one committed record through to Postgres
// together with the store version it produced. On failure the memory
// state is already ahead of the database; the caller sees the error and
// the next successful write carries the version forward.
func (s *LedgerService) persistTransaction(ctx context.Context, userID uuid.UUID, store *ledger.Store, tx models.Transaction) error {
	if err := s.repo.SaveTransaction(ctx, userID, tx, store.Version()); err != nil {
		s.logger.Error("Failed to persist transaction",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("transaction_id", tx.ID.String()),
		)
		return fmt.Errorf("failed to persist transaction: %w", err)
	}
	return nil
}
