// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "fundpool-ledger/internal/api"
	"fundpool-ledger/internal/api/handler"
	"fundpool-ledger/internal/config"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/repository/postgres"
	"fundpool-ledger/internal/service"
	"fundpool-ledger/internal/util"
	"fundpool-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	LedgerRepository      repository.LedgerRepository
	EventRepository       repository.EventRepository
	GroupRepository       repository.GroupRepository
	MembershipRepository  repository.MembershipRepository
	AdminWalletRepository repository.AdminWalletRepository

	// Services
	LedgerService     service.LedgerService
	SettlementService service.SettlementService
	AdminBookService  service.AdminBookService
	GroupService      service.GroupService
	ROIService        service.ROIService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.LedgerRepository = postgres.NewLedgerRepository(app.DB)
	app.EventRepository = postgres.NewEventRepository(app.DB)
	app.GroupRepository = postgres.NewGroupRepository(app.DB)
	app.MembershipRepository = postgres.NewMembershipRepository(app.DB)
	app.AdminWalletRepository = postgres.NewAdminWalletRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.LedgerService = service.NewLedgerService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.WalletRepository,
		app.LedgerRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.SettlementService = service.NewSettlementService(
		app.DB,
		app.DB,
		app.EventRepository,
		app.MembershipRepository,
		app.LedgerService,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.AdminBookService = service.NewAdminBookService(
		app.DB,
		app.DB,
		app.EventRepository,
		app.AdminWalletRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.GroupService = service.NewGroupService(
		app.DB,
		app.DB,
		app.GroupRepository,
		app.MembershipRepository,
		app.LedgerService,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.ROIService = service.NewROIService(
		app.DB,
		app.DB,
		app.GroupRepository,
		app.MembershipRepository,
		app.LedgerService,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.LedgerService, app.Logger)
	groupHandler := handler.NewGroupHandler(app.GroupService, app.Logger)
	eventHandler := handler.NewEventHandler(app.SettlementService, app.AdminBookService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, groupHandler, eventHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
