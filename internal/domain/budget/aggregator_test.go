package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

var refMonth = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func tx(category transactions.Category, amountMinor int64, postedAt time.Time) transactions.Transaction {
	return transactions.Transaction{
		AmountMinor: amountMinor,
		PostedAt:    postedAt,
		Category:    category,
		Type:        transactions.TypeExpense,
	}
}

func find(t *testing.T, totals []CategoryTotal, category transactions.Category) CategoryTotal {
	t.Helper()
	for _, ct := range totals {
		if ct.Category == category {
			return ct
		}
	}
	t.Fatalf("category %s not in totals", category)
	return CategoryTotal{}
}

func TestAggregate_EveryExpenseCountedOnce(t *testing.T) {
	limits := map[transactions.Category]int64{
		transactions.CategoryGroceries: 40000,
	}
	txs := []transactions.Transaction{
		tx(transactions.CategoryGroceries, 12000, refMonth.AddDate(0, 0, 4)),
		tx(transactions.CategoryGroceries, 8000, refMonth.AddDate(0, 0, 10)),
		// No limit configured for Travel: rolls into Other.
		tx(transactions.CategoryTravel, 30000, refMonth.AddDate(0, 0, 6)),
		// Income must not appear in spend totals.
		{AmountMinor: 500000, PostedAt: refMonth.AddDate(0, 0, 2), Category: transactions.CategoryIncome, Type: transactions.TypeIncome},
	}

	totals := Aggregate(txs, limits, refMonth)

	var sum int64
	for _, ct := range totals {
		sum += ct.CurrentAmountMinor
	}
	assert.Equal(t, int64(50000), sum)

	other := find(t, totals, transactions.CategoryOther)
	assert.Equal(t, int64(30000), other.CurrentAmountMinor)
}

func TestAggregate_PercentagesSumToHundred(t *testing.T) {
	limits := map[transactions.Category]int64{
		transactions.CategoryGroceries:     0,
		transactions.CategoryEntertainment: 0,
		transactions.CategoryUtilities:     0,
	}
	txs := []transactions.Transaction{
		tx(transactions.CategoryGroceries, 33000, refMonth.AddDate(0, 0, 1)),
		tx(transactions.CategoryEntertainment, 33000, refMonth.AddDate(0, 0, 2)),
		tx(transactions.CategoryUtilities, 34000, refMonth.AddDate(0, 0, 3)),
	}

	totals := Aggregate(txs, limits, refMonth)

	sum := 0
	for _, ct := range totals {
		sum += ct.PercentageOfTotal
	}
	assert.InDelta(t, 100, sum, 1) // rounding error of at most 1
}

func TestAggregate_ZeroSpendMeansZeroPercentages(t *testing.T) {
	limits := map[transactions.Category]int64{
		transactions.CategoryGroceries: 40000,
	}

	totals := Aggregate(nil, limits, refMonth)

	require.Len(t, totals, 1)
	assert.Equal(t, 0, totals[0].PercentageOfTotal)
	assert.Equal(t, TrendStable, totals[0].Trend)
}

func TestAggregate_TrendClassification(t *testing.T) {
	limits := map[transactions.Category]int64{
		transactions.CategoryGroceries:     0,
		transactions.CategoryEntertainment: 0,
		transactions.CategoryUtilities:     0,
		transactions.CategoryShopping:      0,
	}
	prevMonth := refMonth.AddDate(0, -1, 0)
	txs := []transactions.Transaction{
		// Groceries: 100 -> 120 = +20%, up.
		tx(transactions.CategoryGroceries, 10000, prevMonth.AddDate(0, 0, 5)),
		tx(transactions.CategoryGroceries, 12000, refMonth.AddDate(0, 0, 5)),
		// Entertainment: 100 -> 70 = -30%, down.
		tx(transactions.CategoryEntertainment, 10000, prevMonth.AddDate(0, 0, 5)),
		tx(transactions.CategoryEntertainment, 7000, refMonth.AddDate(0, 0, 5)),
		// Utilities: 100 -> 103 = +3%, inside the stable band.
		tx(transactions.CategoryUtilities, 10000, prevMonth.AddDate(0, 0, 5)),
		tx(transactions.CategoryUtilities, 10300, refMonth.AddDate(0, 0, 5)),
		// Shopping: nothing last month; stable regardless of current spend.
		tx(transactions.CategoryShopping, 99000, refMonth.AddDate(0, 0, 5)),
	}

	totals := Aggregate(txs, limits, refMonth)

	assert.Equal(t, TrendUp, find(t, totals, transactions.CategoryGroceries).Trend)
	assert.Equal(t, TrendDown, find(t, totals, transactions.CategoryEntertainment).Trend)
	assert.Equal(t, TrendStable, find(t, totals, transactions.CategoryUtilities).Trend)

	shopping := find(t, totals, transactions.CategoryShopping)
	assert.Equal(t, TrendStable, shopping.Trend)
	assert.Zero(t, shopping.MonthlyChangePercent)
}

func TestAggregate_SortedByCurrentAmountDescending(t *testing.T) {
	limits := map[transactions.Category]int64{
		transactions.CategoryGroceries:     0,
		transactions.CategoryEntertainment: 0,
	}
	txs := []transactions.Transaction{
		tx(transactions.CategoryGroceries, 5000, refMonth.AddDate(0, 0, 1)),
		tx(transactions.CategoryEntertainment, 90000, refMonth.AddDate(0, 0, 1)),
	}

	totals := Aggregate(txs, limits, refMonth)

	require.GreaterOrEqual(t, len(totals), 2)
	assert.Equal(t, transactions.CategoryEntertainment, totals[0].Category)
}

func TestAggregate_CalendarBoundariesNotRolling(t *testing.T) {
	limits := map[transactions.Category]int64{
		transactions.CategoryGroceries: 0,
	}
	txs := []transactions.Transaction{
		// Last day of the previous month belongs to the previous bucket.
		tx(transactions.CategoryGroceries, 1000, refMonth.AddDate(0, 0, -1)),
		// First instant of the reference month belongs to current.
		tx(transactions.CategoryGroceries, 2000, refMonth),
		// Next month is outside both windows.
		tx(transactions.CategoryGroceries, 4000, refMonth.AddDate(0, 1, 0)),
	}

	totals := Aggregate(txs, limits, refMonth)

	ct := find(t, totals, transactions.CategoryGroceries)
	assert.Equal(t, int64(2000), ct.CurrentAmountMinor)
	assert.Equal(t, int64(1000), ct.PreviousAmountMinor)
}

func TestAggregate_OverspendExample(t *testing.T) {
	// transactions [{amount 550, Food & Dining}] against a 500 limit.
	limits := map[transactions.Category]int64{
		transactions.CategoryFoodDining: 50000,
	}
	txs := []transactions.Transaction{
		tx(transactions.CategoryFoodDining, 55000, refMonth.AddDate(0, 0, 3)),
	}

	totals := Aggregate(txs, limits, refMonth)

	ct := find(t, totals, transactions.CategoryFoodDining)
	assert.Equal(t, int64(55000), ct.CurrentAmountMinor)
	assert.Equal(t, int64(50000), ct.LimitMinor)
	assert.Equal(t, TrendStable, ct.Trend)
	assert.True(t, ct.OverLimit())
}

func TestAggregate_GeneratedMonthConservation(t *testing.T) {
	gen := transactions.NewFixtureGenerator(42)
	txs := gen.MonthOfSpending(refMonth, 80)
	txs = append(txs, gen.Income(refMonth, 400000, "Acme Payroll"))

	var want int64
	for _, tr := range txs {
		if tr.Type == transactions.TypeExpense {
			want += tr.AmountMinor
		}
	}

	totals := Aggregate(txs, nil, refMonth)

	assert.Equal(t, want, TotalSpend(totals), "every generated expense lands in exactly one bucket")
	for _, ct := range totals {
		assert.GreaterOrEqual(t, ct.PercentageOfTotal, 0)
		assert.LessOrEqual(t, ct.PercentageOfTotal, 100)
	}
}
