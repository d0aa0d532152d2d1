package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	auditpg "github.com/frahmantamala/factoryshift/internal/audit/postgres"
	"github.com/frahmantamala/factoryshift/internal/auth"
	authpg "github.com/frahmantamala/factoryshift/internal/auth/postgres"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/core/events"
	"github.com/frahmantamala/factoryshift/internal/dashboard"
	dashboardpg "github.com/frahmantamala/factoryshift/internal/dashboard/postgres"
	"github.com/frahmantamala/factoryshift/internal/department"
	departmentpg "github.com/frahmantamala/factoryshift/internal/department/postgres"
	"github.com/frahmantamala/factoryshift/internal/division"
	divisionpg "github.com/frahmantamala/factoryshift/internal/division/postgres"
	"github.com/frahmantamala/factoryshift/internal/divisionmanager"
	divisionmanagerpg "github.com/frahmantamala/factoryshift/internal/divisionmanager/postgres"
	"github.com/frahmantamala/factoryshift/internal/notification"
	notificationpg "github.com/frahmantamala/factoryshift/internal/notification/postgres"
	"github.com/frahmantamala/factoryshift/internal/settings"
	settingspg "github.com/frahmantamala/factoryshift/internal/settings/postgres"
	"github.com/frahmantamala/factoryshift/internal/shift"
	shiftpg "github.com/frahmantamala/factoryshift/internal/shift/postgres"
	"github.com/frahmantamala/factoryshift/internal/transport/rest"
	"github.com/frahmantamala/factoryshift/internal/user"
	userpg "github.com/frahmantamala/factoryshift/internal/user/postgres"
	"github.com/frahmantamala/factoryshift/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

// userDirectory adapts the user store to the narrow read view the
// division and department services need.
type userDirectory struct {
	repo user.RepositoryAPI
}

func (d userDirectory) GetRef(id int64) (authz.UserRef, error) {
	u, err := d.repo.GetByID(id)
	if err != nil {
		return authz.UserRef{}, err
	}
	return u.Ref(), nil
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	log := deps.Logger
	db := deps.GormDB

	eventBus := events.NewEventBus(log)

	auditRepo := auditpg.NewAuditRepository(db)
	userRepo := userpg.NewUserRepository(db, auditRepo)
	divisionRepo := divisionpg.NewDivisionRepository(db, auditRepo)
	departmentRepo := departmentpg.NewDepartmentRepository(db, auditRepo)
	shiftRepo := shiftpg.NewShiftRepository(db, auditRepo)
	notificationRepo := notificationpg.NewNotificationRepository(db, auditRepo)
	settingsRepo := settingspg.NewSettingsRepository(db, auditRepo)
	dashboardRepo := dashboardpg.NewDashboardRepository(db)
	consoleRepo := divisionmanagerpg.NewConsoleRepository(db)

	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration, cfg.Security.RefreshTokenDuration)
	authService := auth.NewService(authpg.NewAuthRepository(db), tokenGen, cfg.Security.BCryptCost)

	directory := userDirectory{repo: userRepo}

	userService := user.NewService(userRepo, cfg.Security.BCryptCost, log)
	userService.SetEventPublisher(eventBus)

	divisionService := division.NewService(divisionRepo, directory, log)
	divisionService.SetEventPublisher(eventBus)

	departmentService := department.NewService(departmentRepo, directory, log)
	departmentService.SetEventPublisher(eventBus)

	shiftService := shift.NewService(shiftRepo, log)

	notificationService := notification.NewService(notificationRepo, log)
	notificationService.SetEventPublisher(eventBus)

	settingsService := settings.NewService(settingsRepo, log)
	settingsService.SetEventPublisher(eventBus)

	auditService := audit.NewService(auditRepo, log)
	dashboardService := dashboard.NewService(dashboardRepo, log)
	consoleService := divisionmanager.NewService(consoleRepo, notificationService, log)

	handlers := rest.Handlers{
		Auth:            auth.NewHandler(authService),
		User:            user.NewHandler(userService),
		Division:        division.NewHandler(divisionService),
		Department:      department.NewHandler(departmentService),
		Shift:           shift.NewHandler(shiftService),
		Notification:    notification.NewHandler(notificationService),
		Settings:        settings.NewHandler(settingsService),
		Dashboard:       dashboard.NewHandler(dashboardService),
		DivisionManager: divisionmanager.NewHandler(consoleService),
		Audit:           audit.NewHandler(auditService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, log)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
