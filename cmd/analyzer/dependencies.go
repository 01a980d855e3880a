package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finpulse/finpulse/internal/domain/analyzer"
	"github.com/finpulse/finpulse/internal/domain/recommend"
	"github.com/finpulse/finpulse/internal/domain/recurring"
	"github.com/finpulse/finpulse/internal/domain/transactions"
	"github.com/finpulse/finpulse/pkg/config"
	"github.com/finpulse/finpulse/pkg/cron"
	"github.com/finpulse/finpulse/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	TxRepo    transactions.Repository
	Store     analyzer.Store
	Analyzer  *analyzer.Service
	Scheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.TxRepo = transactions.NewPostgresRepository(deps.DB.Pool)
	deps.Store = analyzer.NewPostgresStore(deps.DB.Pool)

	enhancer, err := initEnhancer(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init enhancer: %w", err)
	}

	deps.Analyzer = analyzer.NewService(
		deps.TxRepo,
		deps.Store,
		recurring.NewDetector(recurring.DefaultKeywordRules),
		recommend.NewGenerator(cfg.Currency),
		enhancer,
		logger,
	)

	deps.Scheduler = cron.NewScheduler(
		deps.TxRepo,
		deps.Analyzer,
		cfg.Scheduler.Spec,
		time.Duration(cfg.Scheduler.LookbackDays)*24*time.Hour,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initEnhancer builds the generative recommendation enhancer. Without an API
// key the pipeline runs in rules-only mode.
func initEnhancer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*recommend.Enhancer, error) {
	if cfg.Gemini.APIKey == "" {
		logger.Info("no generative API key configured, recommendations are rules-only")
		return recommend.NewEnhancer(nil, logger), nil
	}

	gen, err := recommend.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}
	return recommend.NewEnhancer(gen, logger), nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
