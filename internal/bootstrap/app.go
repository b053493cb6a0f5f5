package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/runs"
	"resume-screener/internal/screening"
	"resume-screener/internal/services/health"
	"resume-screener/internal/shared/config"
	"resume-screener/internal/shared/server"
	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/storage/db"
	"resume-screener/internal/shared/storage/object"
	localstore "resume-screener/internal/shared/storage/object/local"
	s3store "resume-screener/internal/shared/storage/object/s3"
	"resume-screener/internal/shared/telemetry"
	"resume-screener/internal/taxonomy"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Dialect     db.Dialect
	Store       object.ObjectStore
	Taxonomy    *taxonomy.Taxonomy
	Engine      *screening.Engine
	RunsRepo    runs.Repo
	RunsService *runs.Service
	RunsHandler *runs.Handler
	Health      *health.Service
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	tax, err := LoadTaxonomy(cfg.TaxonomyFile, cfg.DefaultIndustry)
	if err != nil {
		return nil, err
	}
	engineCfg, err := EngineConfig(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var store object.ObjectStore
	if cfg.ArchiveUploads {
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Dialect:  dialect,
		Store:    store,
		Taxonomy: tax,
		Engine:   screening.NewEngine(tax, engineCfg),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		RunsHandler: app.RunsHandler,
		Health:      app.Health,
		RateLimiter: middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// LoadTaxonomy returns the embedded taxonomy, or the one in path when set, with
// its fallback industry replaced by defaultIndustry when that is set.
func LoadTaxonomy(path, defaultIndustry string) (*taxonomy.Taxonomy, error) {
	tax := taxonomy.Default()
	if strings.TrimSpace(path) != "" {
		loaded, err := taxonomy.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		tax = loaded
	}
	if strings.TrimSpace(defaultIndustry) == "" {
		return tax, nil
	}
	return tax.WithDefault(defaultIndustry)
}

// EngineConfig maps configuration onto engine tuning.
func EngineConfig(cfg config.Config) (screening.Config, error) {
	out := screening.DefaultConfig()
	mode, err := screening.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return screening.Config{}, err
	}
	out.MatchMode = mode
	if cfg.SalaryCurrency != "" {
		out.Salary.Currency = cfg.SalaryCurrency
	}
	for _, o := range []struct {
		name string
		src  *int
		dst  *int
	}{
		{"salary base", cfg.SalaryBase, &out.Salary.Base},
		{"salary technical weight", cfg.SalaryTechnicalWeight, &out.Salary.TechnicalWeight},
		{"salary certification weight", cfg.SalaryCertificationWeight, &out.Salary.CertificationWeight},
	} {
		if o.src == nil {
			continue
		}
		if *o.src < 0 {
			return screening.Config{}, fmt.Errorf("%s must not be negative: %d", o.name, *o.src)
		}
		*o.dst = *o.src
	}
	if cfg.WorkerConcurrency > 0 {
		out.Concurrency = cfg.WorkerConcurrency
	}
	return out, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, dialect, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB, dialect)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database unavailable", "error": err})
			return nil, "", nil
		}
		return nil, "", err
	}
	return sqlDB, dialect, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var repo runs.Repo
	if app.DB != nil {
		repo = &runs.SQLRepo{DB: app.DB, Dialect: app.Dialect}
	} else {
		repo = runs.NewMemoryRepo()
	}

	svc := &runs.Service{
		Analyzer:    app.Engine,
		Repo:        repo,
		Store:       app.Store,
		Archive:     app.Store != nil,
		Concurrency: app.Engine.Config.Concurrency,
	}

	app.RunsRepo = repo
	app.RunsService = svc
	app.RunsHandler = runs.NewHandler(svc, app.Taxonomy, app.Config.MaxUploadBytes)
	app.Health = health.NewService(app.DB, len(app.Taxonomy.Industries()))
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
