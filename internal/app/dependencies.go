package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta/moneta/internal/config"
	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/internal/utils"
	"github.com/moneta/moneta/pkg/bucket"
	"github.com/moneta/moneta/pkg/budget"
	"github.com/moneta/moneta/pkg/recurring"
	"github.com/moneta/moneta/pkg/stats"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/moneta/moneta/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	BucketRepo    bucket.BucketRepo
	BucketService bucket.BucketService
	BucketHandler *bucket.BucketHandler

	TransactionRepo    transaction.Repository
	TransactionService transaction.Service
	TransactionHandler *transaction.Handler

	RecurringRepo    recurring.Repository
	RecurringService recurring.Service
	RecurringHandler *recurring.Handler

	BudgetRepo    budget.BudgetRepo
	BudgetService budget.BudgetService
	BudgetHandler *budget.BudgetHandler

	StatsService     stats.StatsService
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewService(user.NewRepository(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.BucketRepo = bucket.NewBucketRepo(db)
	deps.BucketService = bucket.NewBucketService(deps.BucketRepo)
	deps.BucketHandler = bucket.NewBucketHandler(deps.BucketService)

	deps.TransactionRepo = transaction.NewRepository(db)
	deps.TransactionService = transaction.NewService(deps.TransactionRepo, deps.EventBus)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	deps.RecurringRepo = recurring.NewRepository(db)
	deps.RecurringService = recurring.NewService(deps.RecurringRepo, deps.TransactionService, deps.EventBus, deps.Clock)
	deps.RecurringHandler = recurring.NewHandler(deps.RecurringService)

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	budgetService := budget.NewBudgetService(deps.BudgetRepo, deps.TransactionService)
	budgetService.RegisterOverspendWatch(deps.EventBus)
	deps.BudgetService = budgetService
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.StatsService = stats.NewStatsService(deps.TransactionService, deps.BucketService, deps.RecurringService, deps.Clock)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	return deps
}
