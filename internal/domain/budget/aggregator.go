// Package budget buckets expense transactions into per-category totals for a
// reference month and classifies the period-over-period trend.
package budget

import (
	"math"
	"sort"
	"time"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

// Trend classifies month-over-month movement of a category's spend.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// trendThresholdPercent is the band within which movement counts as stable.
const trendThresholdPercent = 5.0

// CategoryTotal is one category's aggregate for the reference month.
// Derived data: recomputed on every run, never stored on its own.
type CategoryTotal struct {
	Category             transactions.Category
	CurrentAmountMinor   int64
	PreviousAmountMinor  int64
	LimitMinor           int64 // 0 when no budget limit is configured
	PercentageOfTotal    int   // whole percent of current-month spend
	Trend                Trend
	MonthlyChangePercent float64
}

// OverLimit reports whether the category exceeded its configured limit.
// Categories without a limit never count as over.
func (c *CategoryTotal) OverLimit() bool {
	return c.LimitMinor > 0 && c.CurrentAmountMinor > c.LimitMinor
}

// Aggregate partitions expense transactions into the calendar month
// containing referenceMonth and the month before it, then totals spend per
// category. Categories without a configured limit roll into the Other
// bucket, so every expense lands in exactly one total. Output is sorted by
// current amount descending; downstream "top category" rules depend on that
// ordering.
func Aggregate(txs []transactions.Transaction, limits map[transactions.Category]int64, referenceMonth time.Time) []CategoryTotal {
	currentStart := time.Date(referenceMonth.Year(), referenceMonth.Month(), 1, 0, 0, 0, 0, referenceMonth.Location())
	currentEnd := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	current := make(map[transactions.Category]int64)
	previous := make(map[transactions.Category]int64)

	for _, tx := range txs {
		if tx.Type != transactions.TypeExpense {
			continue
		}
		bucket := tx.Category
		if _, budgeted := limits[bucket]; !budgeted {
			bucket = transactions.CategoryOther
		}
		switch {
		case !tx.PostedAt.Before(currentStart) && tx.PostedAt.Before(currentEnd):
			current[bucket] += tx.AmountMinor
		case !tx.PostedAt.Before(previousStart) && tx.PostedAt.Before(currentStart):
			previous[bucket] += tx.AmountMinor
		}
	}

	var totalSpend int64
	for _, amount := range current {
		totalSpend += amount
	}

	// Emit a total for every budgeted category plus any bucket with actual
	// spend, so configured-but-unused budgets still show up at zero.
	seen := make(map[transactions.Category]bool)
	var totals []CategoryTotal

	addTotal := func(category transactions.Category) {
		if seen[category] {
			return
		}
		seen[category] = true

		ct := CategoryTotal{
			Category:            category,
			CurrentAmountMinor:  current[category],
			PreviousAmountMinor: previous[category],
			LimitMinor:          limits[category],
			Trend:               TrendStable,
		}

		if totalSpend > 0 {
			ct.PercentageOfTotal = int(math.Round(float64(ct.CurrentAmountMinor) / float64(totalSpend) * 100))
		}

		// Previous == 0 always reads stable: a brand-new category is not a
		// spend spike, and the division is undefined anyway.
		if ct.PreviousAmountMinor > 0 {
			change := float64(ct.CurrentAmountMinor-ct.PreviousAmountMinor) / float64(ct.PreviousAmountMinor) * 100
			ct.MonthlyChangePercent = change
			switch {
			case change > trendThresholdPercent:
				ct.Trend = TrendUp
			case change < -trendThresholdPercent:
				ct.Trend = TrendDown
			}
		}

		totals = append(totals, ct)
	}

	for category := range limits {
		addTotal(category)
	}
	for category := range current {
		addTotal(category)
	}
	for category := range previous {
		addTotal(category)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].CurrentAmountMinor != totals[j].CurrentAmountMinor {
			return totals[i].CurrentAmountMinor > totals[j].CurrentAmountMinor
		}
		return totals[i].Category < totals[j].Category
	})

	return totals
}

// TotalSpend sums the current-month amounts of the given totals.
func TotalSpend(totals []CategoryTotal) int64 {
	var sum int64
	for _, t := range totals {
		sum += t.CurrentAmountMinor
	}
	return sum
}

// TotalLimit sums the configured limits of the given totals.
func TotalLimit(totals []CategoryTotal) int64 {
	var sum int64
	for _, t := range totals {
		sum += t.LimitMinor
	}
	return sum
}
