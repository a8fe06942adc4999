package api

import (
	"finsight/internal/api/handlers"
	"finsight/pkg/auth"
	"finsight/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	txHandler *handlers.TransactionHandler,
	budgetHandler *handlers.BudgetHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	chatHandler *handlers.ChatHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	transactions := protected.Group("/transactions")
	transactions.Post("", txHandler.CreateTransaction)
	transactions.Get("", txHandler.ListTransactions)
	transactions.Get("/:id", txHandler.GetTransaction)
	transactions.Patch("/:id", txHandler.UpdateTransaction)
	transactions.Delete("/:id", txHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.Put("", budgetHandler.SetBudget)
	budgets.Get("", budgetHandler.ListBudgets)

	analytics := protected.Group("/analytics")
	analytics.Get("/snapshot", analyticsHandler.GetSnapshot)
	analytics.Get("/trends", analyticsHandler.GetTrends)
	analytics.Get("/series", analyticsHandler.GetSeries)
	analytics.Get("/forecast", analyticsHandler.GetForecast)
	analytics.Get("/anomalies", analyticsHandler.GetAnomalies)

	protected.Get("/insights", analyticsHandler.GetInsights)

	protected.Post("/chat", chatHandler.Chat)
	protected.Get("/chat/history", chatHandler.GetHistory)

	return app
}
