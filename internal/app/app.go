// Package app wires configuration into a runnable collector.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sportsdesk/cricketwire/external/cricapi"
	"github.com/sportsdesk/cricketwire/external/espn"
	"github.com/sportsdesk/cricketwire/external/sportmonks"
	"github.com/sportsdesk/cricketwire/internal/config"
	"github.com/sportsdesk/cricketwire/internal/domain/match"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
	"github.com/sportsdesk/cricketwire/internal/infrastructure/repository/memory"
	"github.com/sportsdesk/cricketwire/internal/infrastructure/repository/postgres"
	"github.com/sportsdesk/cricketwire/internal/infrastructure/store"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/sportsdesk/cricketwire/internal/usecase"
)

// App holds the assembled collector and the resources it owns.
type App struct {
	Collector *usecase.CollectorService
	Criteria  usecase.SelectionCriteria

	MaxWorkers int

	db     *sqlx.DB
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	fileStore, err := store.NewFileStore(cfg.OutputDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open output dir: %w", err)
	}

	var (
		db      *sqlx.DB
		ledger  match.ProcessedLedger
		rawRepo rawdata.Repository
	)
	if cfg.DBEnabled {
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		logger.InfoContext(ctx, "processed-match ledger backed by postgres", "database", dbNameFromURL(cfg.DBURL))
		ledger = postgres.NewLedgerRepository(db)
		rawRepo = postgres.NewRawDataRepository(db)
	} else {
		logger.InfoContext(ctx, "no database configured, ledger lives in memory for this run")
		ledger = memory.NewLedgerRepository()
		rawRepo = fileStore
	}

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	return &App{
		Collector:  usecase.NewCollectorService(providers, fileStore, ledger, rawRepo, logger),
		Criteria:   buildCriteria(cfg),
		MaxWorkers: cfg.MaxWorkers,
		db:         db,
		logger:     logger,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildProviders(cfg config.Config, logger *logging.Logger) ([]usecase.MatchProvider, error) {
	var providers []usecase.MatchProvider

	if cfg.CricAPI.Enabled {
		providers = append(providers, cricapi.NewClient(cricapi.ClientConfig{
			BaseURL:        cfg.CricAPI.BaseURL,
			APIKey:         cfg.CricAPIKey,
			Timeout:        cfg.CricAPI.Timeout,
			MaxRetries:     cfg.CricAPI.MaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.CricAPI.Circuit,
		}))
	}

	if cfg.ESPN.Enabled {
		providers = append(providers, espn.NewClient(espn.ClientConfig{
			BaseURL:        cfg.ESPN.BaseURL,
			SeriesIDs:      cfg.ESPNSeriesIDs,
			Timeout:        cfg.ESPN.Timeout,
			MaxRetries:     cfg.ESPN.MaxRetries,
			ScheduleTTL:    cfg.ESPNScheduleTTL,
			Logger:         logger,
			CircuitBreaker: cfg.ESPN.Circuit,
		}))
	}

	if cfg.ScraperEnabled {
		providers = append(providers, espn.NewScraper(espn.ScraperConfig{
			BaseURL:     cfg.ScraperBaseURL,
			ResultsPath: cfg.ScraperResultsPath,
			Workers:     cfg.ScraperWorkers,
			Logger:      logger,
		}))
	}

	if cfg.SportMonks.Enabled {
		providers = append(providers, sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:        cfg.SportMonks.BaseURL,
			Token:          cfg.SportMonksToken,
			LeagueIDs:      cfg.SportMonksLeagueIDs,
			Timeout:        cfg.SportMonks.Timeout,
			MaxRetries:     cfg.SportMonks.MaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.SportMonks.Circuit,
		}))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no match providers enabled")
	}
	return providers, nil
}

func buildCriteria(cfg config.Config) usecase.SelectionCriteria {
	return usecase.SelectionCriteria{
		TournamentMarkers: cfg.TournamentMarkers,
		WarmupMarkers:     cfg.WarmupMarkers,
		TargetDate:        cfg.TargetDate,
		FixtureName:       cfg.FixtureName,
		CompletedOnly:     cfg.CompletedOnly,
	}
}
