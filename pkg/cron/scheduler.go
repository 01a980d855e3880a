// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/finpulse/finpulse/internal/domain/analyzer"
	"github.com/finpulse/finpulse/internal/domain/transactions"
)

// Scheduler runs the nightly analysis sweep over every active user.
type Scheduler struct {
	cron     *cron.Cron
	txRepo   transactions.Repository
	analyzer *analyzer.Service
	spec     string
	lookback time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. spec is a standard 5-field cron
// expression; lookback bounds which users count as active.
func NewScheduler(txRepo transactions.Repository, svc *analyzer.Service, spec string, lookback time.Duration, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		txRepo:   txRepo,
		analyzer: svc,
		spec:     spec,
		lookback: lookback,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.analyzeAllActiveUsers)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.analyzeAllActiveUsers()
}

// analyzeAllActiveUsers runs the analysis pipeline for every user with
// recent transactions. One user's failure never stops the sweep.
func (s *Scheduler) analyzeAllActiveUsers() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("starting daily analysis sweep")

	now := time.Now()
	userIDs, err := s.txRepo.ListActiveUserIDs(ctx, now.Add(-s.lookback))
	if err != nil {
		s.logger.Error("failed to list active users", slog.Any("error", err))
		return
	}

	analyzed := 0
	failed := 0
	for _, userID := range userIDs {
		if err := s.analyzeUser(ctx, userID, now); err != nil {
			s.logger.Warn("analysis run failed",
				slog.String("user_id", userID.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		analyzed++
	}

	s.logger.Info("daily analysis sweep completed",
		slog.Int("users_analyzed", analyzed),
		slog.Int("users_failed", failed),
	)
}

func (s *Scheduler) analyzeUser(ctx context.Context, userID uuid.UUID, now time.Time) error {
	report, err := s.analyzer.Run(ctx, userID, now)
	if err != nil {
		return err
	}

	s.logger.Debug("analysis run stored",
		slog.String("user_id", userID.String()),
		slog.Int("recommendations", len(report.Recommendations)),
		slog.Int("health_score", report.Health.Current),
	)
	return nil
}
