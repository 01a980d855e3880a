package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain/budget"
	"github.com/finpulse/finpulse/internal/domain/transactions"
)

func totalsWithRatio(spend, limit int64) []budget.CategoryTotal {
	return []budget.CategoryTotal{
		{Category: transactions.CategoryGroceries, CurrentAmountMinor: spend, LimitMinor: limit},
	}
}

func TestSpendingScore_ExactlyAtBudget(t *testing.T) {
	// ratio 1.0: 100 - clamp(0,100,(1.0-0.8)*200) = 60, then -5 for the one
	// over... at exactly the limit the category is NOT over.
	score := spendingScore(totalsWithRatio(50000, 50000))
	assert.Equal(t, 60, score)
}

func TestSpendingScore_UnderEightyPercentIsPerfect(t *testing.T) {
	score := spendingScore(totalsWithRatio(30000, 50000)) // ratio 0.6
	assert.Equal(t, 100, score)
}

func TestSpendingScore_OverLimitPenalty(t *testing.T) {
	// ratio 1.1: base 100 - 60 = 40, minus 5 for one over-limit category.
	score := spendingScore(totalsWithRatio(55000, 50000))
	assert.Equal(t, 35, score)
}

func TestSpendingScore_NoLimitsConfigured(t *testing.T) {
	totals := []budget.CategoryTotal{
		{Category: transactions.CategoryOther, CurrentAmountMinor: 99999},
	}
	assert.Equal(t, 100, spendingScore(totals))
}

func TestScore_WeightsSumToOne(t *testing.T) {
	hs := Score(totalsWithRatio(1000, 50000), Signals{}, nil)

	var sum float64
	for _, c := range hs.Breakdown {
		sum += c.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	require.Len(t, hs.Breakdown, 4)
}

func TestScore_ClampedForAnyInput(t *testing.T) {
	// Every category massively over limit.
	totals := []budget.CategoryTotal{
		{Category: transactions.CategoryGroceries, CurrentAmountMinor: 900000, LimitMinor: 1000},
		{Category: transactions.CategoryShopping, CurrentAmountMinor: 900000, LimitMinor: 1000},
		{Category: transactions.CategoryTravel, CurrentAmountMinor: 900000, LimitMinor: 1000},
	}
	zero := 0
	hs := Score(totals, Signals{Saving: &zero, Debt: &zero, Investment: &zero}, nil)
	assert.GreaterOrEqual(t, hs.Current, 0)
	assert.LessOrEqual(t, hs.Current, 100)

	hundred := 100
	hs = Score(nil, Signals{Saving: &hundred, Debt: &hundred, Investment: &hundred}, nil)
	assert.GreaterOrEqual(t, hs.Current, 0)
	assert.LessOrEqual(t, hs.Current, 100)
}

func TestScore_CompositeUsesDocumentedWeights(t *testing.T) {
	// Spending 100 (no limits), saving 80, debt 60, investment 40:
	// 100*0.3 + 80*0.2 + 60*0.3 + 40*0.2 = 72.
	saving, debt, investment := 80, 60, 40
	hs := Score(nil, Signals{Saving: &saving, Debt: &debt, Investment: &investment}, nil)
	assert.Equal(t, 72, hs.Current)
}

func TestScore_DeltaFromSuppliedPrevious(t *testing.T) {
	prev := 50
	hs := Score(nil, Signals{}, &prev)
	assert.Equal(t, 50, hs.Previous)
	assert.Equal(t, hs.Current-50, hs.Delta)
}

func TestScore_PlaceholderPreviousWhenNoHistory(t *testing.T) {
	hs := Score(nil, Signals{}, nil)
	assert.Equal(t, hs.Current-6, hs.Previous)
	assert.Equal(t, 6, hs.Delta)
}

func TestScore_PlaceholderSignals(t *testing.T) {
	hs := Score(nil, Signals{}, nil)
	byName := map[string]int{}
	for _, c := range hs.Breakdown {
		byName[c.Name] = c.Score
	}
	assert.Equal(t, defaultSavingScore, byName["saving"])
	assert.Equal(t, defaultDebtScore, byName["debt"])
	assert.Equal(t, defaultInvestmentScore, byName["investment"])
}
