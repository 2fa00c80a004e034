package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"annostat-backend/internal/account"
	googleauth "annostat-backend/internal/auth"
	"annostat-backend/internal/queue"
	"annostat-backend/internal/ratings"
	"annostat-backend/internal/shared/config"
	"annostat-backend/internal/shared/server"
	"annostat-backend/internal/shared/storage/db"
	"annostat-backend/internal/shared/storage/object"
	localstore "annostat-backend/internal/shared/storage/object/local"
	s3store "annostat-backend/internal/shared/storage/object/s3"
	"annostat-backend/internal/summaries"
	"annostat-backend/internal/taxonomy"
	"annostat-backend/internal/usage"
	"annostat-backend/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Queue            queue.Client
	DatasetsRepo     ratings.DatasetsRepo
	RunsRepo         summaries.Repo
	UsersRepo        users.Repo
	DatasetsService  *ratings.Service
	UsageService     *usage.Service
	SummariesService *summaries.Service
	SummaryProcessor SummaryProcessor
	AccountService   *account.Service
	UsersService     *users.Service
	Template         taxonomy.Template
	TemplateHandler  *taxonomy.Handler
	DatasetsHandler  *ratings.Handler
	SummariesHandler *summaries.Handler
	UsageHandler     *usage.Handler
	UsersHandler     *users.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// SummaryProcessor allows callers to override run processing for tests.
type SummaryProcessor interface {
	ProcessRun(ctx context.Context, runID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		TemplateHandler:  app.TemplateHandler,
		DatasetsHandler:  app.DatasetsHandler,
		SummariesHandler: app.SummariesHandler,
		UsageHandler:     app.UsageHandler,
		UsersHandler:     app.UsersHandler,
		AccountHandler:   app.AccountHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("AS_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var datasetsRepo ratings.DatasetsRepo
	var runsRepo summaries.Repo
	var userRepo users.Repo

	if app.DB != nil {
		datasetsRepo = &ratings.PGRepo{DB: app.DB}
		runsRepo = &summaries.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		datasetsRepo = ratings.NewMemoryRepo()
		runsRepo = summaries.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	template, err := taxonomy.Load(app.Config.TemplatePath)
	if err != nil {
		return fmt.Errorf("load annotation template: %w", err)
	}

	datasetsSvc := &ratings.Service{Store: app.Store, Repo: datasetsRepo}

	summariesSvc := &summaries.Service{
		Repo:     runsRepo,
		Datasets: datasetsSvc,
		Usage:    usageSvc,
		JobQueue: app.Queue,
		Defaults: summaries.Options{
			Resamples:        app.Config.BootstrapResamples,
			Seed:             app.Config.BootstrapSeed,
			ExcludeRaterType: app.Config.ExcludeRaterType,
		}.WithDefaults(),
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.DatasetsRepo = datasetsRepo
	app.RunsRepo = runsRepo
	app.UsersRepo = userRepo
	app.DatasetsService = datasetsSvc
	app.UsageService = usageSvc
	app.SummariesService = summariesSvc
	app.SummaryProcessor = summariesSvc
	app.AccountService = account.NewService(datasetsRepo, runsRepo)
	app.UsersService = userSvc
	app.Template = template
	app.TemplateHandler = taxonomy.NewHandler(template)
	app.DatasetsHandler = ratings.NewHandler(datasetsSvc)
	app.SummariesHandler = summaries.NewHandler(summariesSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.GoogleAuth = googleAuthSvc

	if app.DatasetsHandler == nil || app.SummariesHandler == nil || app.UsageHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
