package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-pickem/external/lolesports"
	"github.com/riskibarqy/esports-pickem/internal/config"
	"github.com/riskibarqy/esports-pickem/internal/domain/cachemeta"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/domain/league"
	"github.com/riskibarqy/esports-pickem/internal/domain/prediction"
	"github.com/riskibarqy/esports-pickem/internal/domain/user"
	"github.com/riskibarqy/esports-pickem/internal/infrastructure/account/anubis"
	cacherepo "github.com/riskibarqy/esports-pickem/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esports-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-pickem/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/esports-pickem/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/esports-pickem/internal/platform/id"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
	"github.com/riskibarqy/esports-pickem/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

// App holds the HTTP server, the background poller and what must be closed on shutdown.
type App struct {
	Server *http.Server
	Poller *usecase.Poller

	pollerEnabled bool
	db            *sqlx.DB
}

type repositories struct {
	events      event.Repository
	leagues     league.Repository
	meta        cachemeta.Repository
	users       user.Repository
	predictions prediction.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, db, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, cfg.CacheTTL)
	}

	feed := lolesports.NewClient(lolesports.ClientConfig{
		BaseURL:        cfg.LoLEsportsBaseURL,
		APIKey:         cfg.LoLEsportsAPIKey,
		Locale:         cfg.LoLEsportsLocale,
		Timeout:        cfg.LoLEsportsTimeout,
		MaxRetries:     cfg.LoLEsportsMaxRetries,
		MaxPages:       cfg.LoLEsportsMaxPages,
		Horizon:        cfg.LoLEsportsHorizon,
		Logger:         logger,
		CircuitBreaker: cfg.LoLEsportsCircuit,
	})

	syncSvc := usecase.NewScheduleSyncService(feed, repos.events, repos.leagues, repos.meta, logger)
	scoringSvc := usecase.NewScoringService(repos.predictions, logger, cfg.ScoringWorkers)
	predictionSvc := usecase.NewPredictionService(repos.events, repos.predictions, repos.users, idgen.NewUUIDGenerator())
	ratingSvc := usecase.NewRatingService(repos.events, cfg.RatingKFactor, logger)
	poller := usecase.NewPoller(syncSvc, scoringSvc, logger, usecase.PollerConfig{
		ScheduleInterval: cfg.PollerScheduleInterval,
		LeaguesInterval:  cfg.PollerLeaguesInterval,
		CycleTimeout:     cfg.PollerCycleTimeout,
	})

	verifier := anubis.NewClient(anubis.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.AnubisTimeout},
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		CacheTTL:       cfg.AnubisCacheTTL,
		CircuitBreaker: cfg.AnubisCircuit,
		Logger:         logger,
	})

	handler := httpapi.NewHandler(syncSvc, predictionSvc, ratingSvc, poller, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Poller:        poller,
		pollerEnabled: cfg.PollerEnabled,
		db:            db,
	}, nil
}

// StartPoller runs the cold start and the periodic cycles unless disabled by config.
func (a *App) StartPoller(ctx context.Context, logger *logging.Logger) {
	if !a.pollerEnabled {
		logger.Info("poller disabled", "reason", "POLLER_ENABLED=false")
		return
	}
	a.Poller.Start(ctx)
}

func (a *App) Close() error {
	a.Poller.Stop()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		users := memory.NewUserRepository()
		return repositories{
			events:      memory.NewEventRepository(),
			leagues:     memory.NewLeagueRepository(nil),
			meta:        memory.NewCacheMetadataRepository(),
			users:       users,
			predictions: memory.NewPredictionRepository(users),
		}, nil, nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		events:      postgres.NewEventRepository(db),
		leagues:     postgres.NewLeagueRepository(db),
		meta:        postgres.NewCacheMetadataRepository(db),
		users:       postgres.NewUserRepository(db),
		predictions: postgres.NewPredictionRepository(db),
	}, db, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
