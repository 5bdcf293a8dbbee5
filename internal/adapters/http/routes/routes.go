package routes

import (
	"nja-ledger/internal/adapters/http/handlers"
	"nja-ledger/internal/adapters/http/middleware"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/config"
	"nja-ledger/internal/core/services"
	"nja-ledger/internal/pkg/keyedmutex"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers, then registers all
// API routes.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	memberRepo := repositories.NewMemberRepository(db)
	contribRepo := repositories.NewContributionRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	repayRepo := repositories.NewLoanRepaymentRepository(db)
	logRepo := repositories.NewTransactionLogRepository(db)

	// Shared infrastructure. A single lock table covers every
	// decision path so member and loan keys never collide.
	locks := keyedmutex.New()
	notifier := services.NewNotificationService()

	// Services
	authService := services.NewAuthService(memberRepo, cfg)
	memberService := services.NewMemberService(memberRepo, contribRepo, withdrawalRepo, notifier)
	contributionService := services.NewContributionService(db, contribRepo, memberRepo, logRepo)
	withdrawalService := services.NewWithdrawalService(db, withdrawalRepo, memberService, logRepo, notifier, locks)
	loanService := services.NewLoanService(db, loanRepo, repayRepo, memberService, logRepo, notifier, locks)
	statementService := services.NewStatementService(contribRepo, withdrawalRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, memberService)
	memberHandler := handlers.NewMemberHandler(memberService)
	contributionHandler := handlers.NewContributionHandler(contributionService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	loanHandler := handlers.NewLoanHandler(loanService)
	statementHandler := handlers.NewStatementHandler(statementService)
	transactionHandler := handlers.NewTransactionHandler(logRepo)

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	api.Post("/members/register", middleware.AuthRateLimiter(), memberHandler.Register)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	members := protected.Group("/members")
	members.Get("/", memberHandler.List)
	members.Get("/:id", memberHandler.Get)
	members.Get("/:id/balance", memberHandler.GetBalance)
	members.Post("/:id/approve", memberHandler.Approve)
	members.Post("/:id/deactivate", memberHandler.Deactivate)

	contributions := protected.Group("/contributions")
	contributions.Post("/", contributionHandler.Create)
	contributions.Get("/", contributionHandler.List)
	contributions.Get("/totals", contributionHandler.CategoryTotals)
	contributions.Get("/:id", contributionHandler.Get)

	withdrawals := protected.Group("/withdrawals")
	withdrawals.Post("/", withdrawalHandler.Create)
	withdrawals.Get("/", withdrawalHandler.List)
	withdrawals.Get("/:id", withdrawalHandler.Get)
	withdrawals.Post("/:id/decide", withdrawalHandler.Decide)

	loans := protected.Group("/loans")
	loans.Post("/", loanHandler.Create)
	loans.Get("/", loanHandler.List)
	loans.Get("/:id", loanHandler.Get)
	loans.Post("/:id/decide", loanHandler.Decide)
	loans.Post("/:id/default", loanHandler.Default)
	loans.Post("/:id/repayments", loanHandler.CreateRepayment)
	loans.Get("/:id/repayments", loanHandler.ListRepayments)

	statements := protected.Group("/statements", middleware.StatementCache())
	statements.Get("/yearly/:year", statementHandler.Yearly)
	statements.Get("/yearly", statementHandler.Yearly)

	protected.Get("/transactions", transactionHandler.List)
}
