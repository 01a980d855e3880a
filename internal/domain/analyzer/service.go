// Package analyzer orchestrates one analysis run: normalize-fed transactions
// in, category totals, recurring candidates, health score, recommendations,
// and personalized challenges out.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finpulse/finpulse/internal/domain/budget"
	"github.com/finpulse/finpulse/internal/domain/challenges"
	"github.com/finpulse/finpulse/internal/domain/health"
	"github.com/finpulse/finpulse/internal/domain/recommend"
	"github.com/finpulse/finpulse/internal/domain/recurring"
	"github.com/finpulse/finpulse/internal/domain/transactions"
)

// lookback is how much history one run analyzes. Recurring detection wants
// several months of context; the budget aggregator only reads the last two.
const lookback = 6 * 30 * 24 * time.Hour

// Store persists the run's durable outputs and supplies per-user inputs the
// transaction list doesn't carry.
type Store interface {
	GetBudgetLimits(ctx context.Context, userID uuid.UUID) (map[transactions.Category]int64, error)
	LatestHealthScore(ctx context.Context, userID uuid.UUID) (*int, error)
	SaveHealthScore(ctx context.Context, userID uuid.UUID, score health.HealthScore, asOf time.Time) error
	SaveRecommendations(ctx context.Context, userID uuid.UUID, recs []recommend.Recommendation) error
}

// Report is the full output of one analysis run.
type Report struct {
	UserID          uuid.UUID
	GeneratedAt     time.Time
	CategoryTotals  []budget.CategoryTotal
	Recurring       recurring.Result
	Health          health.HealthScore
	Recommendations []recommend.Recommendation
	Challenges      []challenges.Challenge
}

// Service runs the analysis pipeline for one user at a time. The analytical
// stages are pure; only loading inputs and saving outputs touch the store.
type Service struct {
	txRepo    transactions.Repository
	store     Store
	detector  *recurring.Detector
	generator *recommend.Generator
	enhancer  *recommend.Enhancer
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewService creates an analyzer service.
func NewService(txRepo transactions.Repository, store Store, detector *recurring.Detector, generator *recommend.Generator, enhancer *recommend.Enhancer, logger *slog.Logger) *Service {
	return &Service{
		txRepo:    txRepo,
		store:     store,
		detector:  detector,
		generator: generator,
		enhancer:  enhancer,
		logger:    logger,
		tracer:    otel.Tracer("finpulse/analyzer"),
	}
}

// Run executes the full pipeline for userID as of now. now doubles as the
// reference month for budget aggregation, so tests pin it.
func (s *Service) Run(ctx context.Context, userID uuid.UUID, now time.Time) (*Report, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "analyzer.Run",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	txs, err := s.txRepo.ListByUser(ctx, userID, now.Add(-lookback))
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	limits, err := s.store.GetBudgetLimits(ctx, userID)
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load budget limits: %w", err)
	}

	report := &Report{UserID: userID, GeneratedAt: now}

	report.CategoryTotals = s.aggregate(ctx, txs, limits, now)
	report.Recurring = s.detect(ctx, txs)

	previous, err := s.store.LatestHealthScore(ctx, userID)
	if err != nil {
		// Missing history is not an error worth failing the run over.
		s.logger.Warn("failed to load prior health score", slog.Any("error", err))
		previous = nil
	}
	report.Health = health.Score(report.CategoryTotals, health.Signals{}, previous)

	totalSpend := budget.TotalSpend(report.CategoryTotals)
	totalIncome := monthlyIncome(txs, now)
	report.Recommendations = s.recommend(ctx, report, totalSpend, totalIncome, now)

	profile := buildProfile(report.CategoryTotals, limits, report.Recurring, totalIncome, totalSpend)
	report.Challenges = challenges.Personalize(challenges.Catalog, profile, nil)

	if err := s.store.SaveHealthScore(ctx, userID, report.Health, now); err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save health score: %w", err)
	}
	if err := s.store.SaveRecommendations(ctx, userID, report.Recommendations); err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save recommendations: %w", err)
	}

	runsTotal.WithLabelValues("ok").Inc()
	runDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("analysis run completed",
		slog.String("user_id", userID.String()),
		slog.Int("transactions", len(txs)),
		slog.Int("recommendations", len(report.Recommendations)),
		slog.Int("health_score", report.Health.Current),
	)
	return report, nil
}

func (s *Service) aggregate(ctx context.Context, txs []transactions.Transaction, limits map[transactions.Category]int64, now time.Time) []budget.CategoryTotal {
	_, span := s.tracer.Start(ctx, "analyzer.aggregate")
	defer span.End()
	return budget.Aggregate(txs, limits, now)
}

func (s *Service) detect(ctx context.Context, txs []transactions.Transaction) recurring.Result {
	_, span := s.tracer.Start(ctx, "analyzer.detect")
	defer span.End()
	return s.detector.Detect(txs)
}

// recommend runs every domain rule set and the enhancement pass per domain.
func (s *Service) recommend(ctx context.Context, report *Report, totalSpend, totalIncome int64, now time.Time) []recommend.Recommendation {
	ctx, span := s.tracer.Start(ctx, "analyzer.recommend")
	defer span.End()

	var out []recommend.Recommendation

	spending := s.generator.Spending(report.CategoryTotals, now)
	out = append(out, s.enhancer.Enhance(ctx, recommend.DomainSpending, spending, report.CategoryTotals, totalSpend)...)

	subs := s.generator.Subscriptions(report.Recurring.Subscriptions, now)
	out = append(out, s.enhancer.Enhance(ctx, recommend.DomainSubscriptions, subs, report.Recurring.Subscriptions, totalSpend)...)

	savings := s.generator.Savings(totalIncome, totalSpend, now)
	out = append(out, s.enhancer.Enhance(ctx, recommend.DomainSavings, savings, report.CategoryTotals, totalSpend)...)

	debt := s.generator.Debt(report.CategoryTotals, now)
	out = append(out, s.enhancer.Enhance(ctx, recommend.DomainDebt, debt, report.CategoryTotals, totalSpend)...)

	return out
}

// monthlyIncome totals income transactions inside the calendar month of now.
func monthlyIncome(txs []transactions.Transaction, now time.Time) int64 {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var total int64
	for _, tx := range txs {
		if tx.Type != transactions.TypeIncome {
			continue
		}
		if !tx.PostedAt.Before(monthStart) && tx.PostedAt.Before(monthEnd) {
			total += tx.AmountMinor
		}
	}
	return total
}

// buildProfile assembles the challenge personalizer's view of the user from
// the run's derived outputs.
func buildProfile(totals []budget.CategoryTotal, limits map[transactions.Category]int64, rec recurring.Result, totalIncome, totalSpend int64) challenges.Profile {
	spend := make(map[transactions.Category]int64, len(totals))
	for _, ct := range totals {
		spend[ct.Category] = ct.CurrentAmountMinor
	}
	return challenges.Profile{
		CategorySpendMinor: spend,
		BudgetLimits:       limits,
		MonthlyIncomeMinor: totalIncome,
		MonthlySpendMinor:  totalSpend,
		SubscriptionCount:  len(rec.Subscriptions),
	}
}
