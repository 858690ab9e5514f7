package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"cvprofile-backend/internal/cvs"
	"cvprofile-backend/internal/llm"
	"cvprofile-backend/internal/llm/gemini"
	"cvprofile-backend/internal/llmretry"
	"cvprofile-backend/internal/profile"
	"cvprofile-backend/internal/shared/cache"
	"cvprofile-backend/internal/shared/config"
	"cvprofile-backend/internal/shared/server"
	"cvprofile-backend/internal/shared/storage/db"
	"cvprofile-backend/internal/shared/storage/object"
	localstore "cvprofile-backend/internal/shared/storage/object/local"
	s3store "cvprofile-backend/internal/shared/storage/object/s3"
	"cvprofile-backend/internal/suggestions"
)

// App holds the wired dependency graph behind the HTTP surface.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Cache  cache.Cache
	LLM    llm.Client

	CVRepo            cvs.Repo
	ProfileSyncer     profile.Syncer
	CVService         *cvs.Service
	SuggestionService *suggestions.Service
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

	appCache, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	strategy, err := cvs.SelectStrategy(cfg.ExtractionStrategy)
	if err != nil {
		return nil, err
	}

	var (
		cvRepo cvs.Repo
		syncer profile.Syncer
	)
	if sqlDB != nil {
		cvRepo = &cvs.PGRepo{DB: sqlDB}
		syncer = &profile.PGSyncer{DB: sqlDB}
	} else {
		cvRepo = cvs.NewMemoryRepo()
		syncer = profile.NewMemorySyncer()
	}

	cvSvc := cvs.NewService(cvRepo, store, llmClient, syncer, appCache, strategy, llmretry.Config{
		MaxAttempts: cfg.ExtractionMaxAttempts,
		Delay:       llmretry.FixedDelay(cfg.RetryDelay),
		Flow:        "extraction",
	}, cfg.MaxUploadBytes)

	suggestionSvc := suggestions.NewService(llmClient, llmretry.Config{
		MaxAttempts: cfg.SuggestionMaxAttempts,
		Delay:       llmretry.FixedDelay(cfg.RetryDelay),
		Flow:        "suggestions",
	})

	app := &App{
		Config:            cfg,
		DB:                sqlDB,
		Store:             store,
		Cache:             appCache,
		LLM:               llmClient,
		CVRepo:            cvRepo,
		ProfileSyncer:     syncer,
		CVService:         cvSvc,
		SuggestionService: suggestionSvc,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		CVHandler:         cvs.NewHandler(cvSvc),
		SuggestionHandler: suggestions.NewHandler(suggestionSvc, cfg.LLMProvider),
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
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return cache.NewMemory(), nil
	}
	redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: redis connect failed; using in-memory cache: %v", err)
			return cache.NewMemory(), nil
		}
		return nil, err
	}
	return redisCache, nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "gemini" {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: GEMINI_API_KEY empty; analysis calls will fail until configured")
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
