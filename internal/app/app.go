package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/clubcms/standings-engine/internal/config"
	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/consistency"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/recalc"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/domain/team"
	"github.com/clubcms/standings-engine/internal/infrastructure/repository/memory"
	"github.com/clubcms/standings-engine/internal/infrastructure/repository/postgres"
	"github.com/clubcms/standings-engine/internal/platform/cache"
	"github.com/clubcms/standings-engine/internal/platform/logging"
	"github.com/clubcms/standings-engine/internal/platform/resilience"
	"github.com/clubcms/standings-engine/internal/usecase"
)

// App owns the engine and every resource behind it. Callers subscribe the
// engine to their match store and close the app on shutdown.
type App struct {
	Engine *usecase.Engine

	queue  *usecase.RecalcQueue
	db     *sqlx.DB
	logger *logging.Logger
}

type repositories struct {
	matches match.Repository
	clubs   club.Repository
	teams   team.Repository
	table   standings.Repository
	reports consistency.Repository
	jobRuns recalc.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		repos repositories
		db    *sqlx.DB
	)
	if cfg.DBURL != "" {
		conn, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		db = conn
		repos = repositories{
			matches: postgres.NewMatchRepository(db),
			clubs:   postgres.NewClubRepository(db),
			teams:   postgres.NewTeamRepository(db),
			table:   postgres.NewStandingsRepository(db),
			reports: postgres.NewConsistencyRepository(db),
			jobRuns: postgres.NewJobRunRepository(db),
		}
		logger.Info("storage configured", "backend", "postgres", "database", cfg.DatabaseName())
	} else {
		repos = repositories{
			matches: memory.NewMatchRepository(memory.SeedMatches()),
			clubs:   memory.NewClubRepository(memory.SeedClubs()),
			teams:   memory.NewTeamRepository(memory.SeedTeams()),
			table:   memory.NewStandingsRepository(),
			reports: memory.NewConsistencyRepository(),
			jobRuns: memory.NewJobRunRepository(),
		}
		logger.Info("storage configured", "backend", "memory")
	}

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	resolver := usecase.NewResolverService(repos.matches, repos.clubs, repos.teams, logger)
	validator := usecase.NewValidatorService(repos.matches, repos.clubs, repos.table, usecase.ValidatorChecks{
		DualRepresentation: cfg.CheckDualRepresentation,
		OrphanedEntries:    cfg.CheckOrphanedEntries,
		DuplicateSubjects:  cfg.CheckDuplicateSubjects,
		SelfPlay:           cfg.CheckSelfPlay,
	}, logger)
	migrator := usecase.NewMigrationService(repos.table, repos.clubs, logger)
	calc := usecase.NewCalculationService(
		repos.matches,
		repos.clubs,
		repos.table,
		resolver,
		validator,
		migrator,
		repos.reports,
		cacheStore,
		logger,
	)

	queue, err := usecase.NewRecalcQueue(calc, repos.jobRuns, usecase.QueueConfig{
		Workers:     cfg.QueueWorkers,
		MaxAttempts: cfg.QueueMaxAttempts,
		Backoff: resilience.Backoff{
			Base: cfg.QueueRetryBase,
			Max:  cfg.QueueRetryMax,
		},
		RunTimeout: cfg.QueueRunTimeout,
	}, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	engine := usecase.NewEngine(calc, validator, queue, repos.reports, repos.jobRuns, logger)

	return &App{
		Engine: engine,
		queue:  queue,
		db:     db,
		logger: logger,
	}, nil
}

// Close drains the recalculation queue before releasing storage so running
// jobs finish their table writes.
func (a *App) Close(ctx context.Context) error {
	err := a.queue.Close(ctx)

	if a.db != nil {
		if closeErr := a.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Connect("postgres", cfg.DSN(),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(cfg.DatabaseName()),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
