package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"finsight/internal/dto"
	"finsight/internal/models"
	"finsight/internal/repository"
	"finsight/internal/service"
	"finsight/pkg/auth"
	"finsight/pkg/config"
	"finsight/pkg/logger"
	"finsight/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	demoEmail    = "demo@finsight.local"
	demoUsername = "demo"
	demoPassword = "demo-password-123"
)

// seedTransaction is one demo ledger entry. Day counts from the start
// of its period.
type seedTransaction struct {
	amount      string
	category    string
	description string
	day         int
}

func currentMonthTransactions() []seedTransaction {
	return []seedTransaction{
		{amount: "3000.00", category: "income", description: "Monthly salary", day: 0},
		{amount: "-1200.00", category: "housing", description: "Monthly rent", day: 0},
		{amount: "-120.50", category: "food", description: "Grocery shopping", day: 2},
		{amount: "-45.00", category: "transportation", description: "Gas station", day: 4},
		{amount: "-85.20", category: "food", description: "Restaurant dinner", day: 7},
		{amount: "-150.00", category: "utilities", description: "Electric and water bills", day: 9},
		{amount: "-60.00", category: "entertainment", description: "Movie night", day: 11},
		{amount: "-200.15", category: "shopping", description: "New clothes", day: 14},
		{amount: "-35.80", category: "healthcare", description: "Pharmacy", day: 17},
	}
}

// previousMonthTransactions gives the trend rules a baseline to compare
// against.
func previousMonthTransactions() []seedTransaction {
	return []seedTransaction{
		{amount: "3000.00", category: "income", description: "Monthly salary", day: 0},
		{amount: "-1200.00", category: "housing", description: "Monthly rent", day: 0},
		{amount: "-310.40", category: "food", description: "Groceries and dining", day: 6},
		{amount: "-52.00", category: "transportation", description: "Gas station", day: 8},
		{amount: "-150.00", category: "utilities", description: "Electric and water bills", day: 10},
		{amount: "-25.00", category: "entertainment", description: "Streaming subscriptions", day: 12},
	}
}

type seedBudget struct {
	category string
	limit    string
}

func demoBudgets() []seedBudget {
	return []seedBudget{
		{category: "food", limit: "500.00"},
		{category: "transportation", limit: "200.00"},
		{category: "entertainment", limit: "150.00"},
		{category: "shopping", limit: "300.00"},
		{category: "utilities", limit: "200.00"},
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting demo data seeder")

	if err := repository.Migrate(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)

	analytics := service.NewAnalyticsService(appLogger)
	insights := service.NewInsightService(models.InsightThresholds{
		OverspendRatio: cfg.Insights.OverspendRatio,
		NearLimitRatio: cfg.Insights.NearLimitRatio,
		TrendThreshold: cfg.Insights.TrendThreshold,
	}, appLogger)
	ledgers := service.NewLedgerService(ledgerRepo, analytics, insights, appLogger)

	user, err := ensureDemoUser(ctx, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to ensure demo user", zap.Error(err))
	}

	// Re-running the seeder against a populated ledger would duplicate
	// every entry, so bail out if the user already has transactions.
	existing, _, err := ledgers.ListTransactions(ctx, user.ID, 1, 0)
	if err != nil {
		appLogger.Fatal("Failed to inspect ledger", zap.Error(err))
	}
	if len(existing) > 0 {
		appLogger.Info("Ledger already seeded, nothing to do",
			zap.String("user_id", user.ID.String()),
		)
		return
	}

	now := time.Now().UTC()
	period := models.PeriodOf(now)

	added := 0
	batches := []struct {
		period models.Period
		items  []seedTransaction
	}{
		{period: period.Previous(), items: previousMonthTransactions()},
		{period: period, items: currentMonthTransactions()},
	}
	for _, batch := range batches {
		for _, item := range batch.items {
			date := batch.period.Start().AddDate(0, 0, item.day)
			req := &dto.CreateTransactionRequest{
				Amount:      item.amount,
				Category:    item.category,
				Description: item.description,
				Account:     "checking",
				Date:        date.Format("2006-01-02"),
			}
			if _, err := ledgers.AddTransaction(ctx, user.ID, req); err != nil {
				appLogger.Fatal("Failed to seed transaction",
					zap.Error(err),
					zap.String("description", item.description),
				)
			}
			added++
		}
	}

	for _, b := range demoBudgets() {
		req := &dto.SetBudgetRequest{
			Category: b.category,
			Period:   period.String(),
			Limit:    b.limit,
		}
		if _, err := ledgers.SetBudget(ctx, user.ID, req); err != nil {
			appLogger.Fatal("Failed to seed budget",
				zap.Error(err),
				zap.String("category", b.category),
			)
		}
	}

	appLogger.Info("Demo data seeded",
		zap.String("email", demoEmail),
		zap.String("password", demoPassword),
		zap.Int("transactions", added),
		zap.Int("budgets", len(demoBudgets())),
		zap.String("period", period.String()),
	)
}

func ensureDemoUser(ctx context.Context, users *repository.UserRepository, appLogger *zap.Logger) (*models.User, error) {
	user, err := users.GetByEmail(ctx, demoEmail)
	if err == nil {
		appLogger.Info("Demo user already exists", zap.String("user_id", user.ID.String()))
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user = &models.User{
		ID:           uuid.New(),
		Username:     demoUsername,
		Email:        demoEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}

	appLogger.Info("Demo user created", zap.String("user_id", user.ID.String()))
	return user, nil
}
