package recurring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

func expense(merchant string, amountMinor int64, postedAt time.Time) transactions.Transaction {
	return transactions.Transaction{
		ID:           uuid.New(),
		AmountMinor:  amountMinor,
		PostedAt:     postedAt,
		Description:  merchant,
		MerchantName: merchant,
		Type:         transactions.TypeExpense,
		Category:     transactions.CategoryUncategorized,
	}
}

func income(merchant string, amountMinor int64, postedAt time.Time) transactions.Transaction {
	tx := expense(merchant, amountMinor, postedAt)
	tx.Type = transactions.TypeIncome
	tx.Category = transactions.CategoryIncome
	return tx
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestDetect_RepeatedMerchantBecomesSubscription(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	result := d.Detect([]transactions.Transaction{
		expense("Planet Granite", 8500, day(3)),
		expense("Planet Granite", 8500, day(3).AddDate(0, 1, 0)),
		expense("One Off Diner", 2300, day(5)),
	})

	require.Len(t, result.Subscriptions, 1)
	c := result.Subscriptions[0]
	assert.Equal(t, "planet granite", c.MerchantKey)
	assert.Equal(t, 2, c.Frequency)
	assert.Equal(t, int64(17000), c.TotalAmountMinor)
	assert.Equal(t, DirectionDebit, c.Direction)
	assert.Equal(t, CadenceMonthly, c.Cadence)
}

func TestDetect_KeywordFastPathFlagsSingleOccurrence(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	result := d.Detect([]transactions.Transaction{
		expense("Netflix", 1599, day(10)),
	})

	require.Len(t, result.Subscriptions, 1)
	c := result.Subscriptions[0]
	assert.Equal(t, 1, c.Frequency)
	assert.Equal(t, "Streaming", c.KeywordLabel)
	assert.Equal(t, CadenceMonthly, c.Cadence)
	assert.InDelta(t, 0.25, c.CadenceConfidence, 0.001)
}

func TestDetect_KeywordMatchesDescriptionToo(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	tx := expense("", 1599, day(10))
	tx.Description = "NETFLIX.COM charge"

	result := d.Detect([]transactions.Transaction{tx})
	require.Len(t, result.Subscriptions, 1)
}

func TestDetect_SingleCreditIsNoise(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	result := d.Detect([]transactions.Transaction{
		income("Acme Corp", 250000, day(1)),
	})
	assert.Empty(t, result.IncomeSources)

	result = d.Detect([]transactions.Transaction{
		income("Acme Corp", 250000, day(1)),
		income("Acme Corp", 250000, day(1).AddDate(0, 1, 0)),
	})
	require.Len(t, result.IncomeSources, 1)
	c := result.IncomeSources[0]
	assert.Equal(t, 2, c.Frequency)
	assert.Equal(t, int64(250000), c.AverageAmountMinor)
	assert.Equal(t, DirectionCredit, c.Direction)
}

func TestDetect_GroupingIsCaseInsensitive(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	result := d.Detect([]transactions.Transaction{
		expense("SPOTIFY", 999, day(1)),
		expense("Spotify", 999, day(1).AddDate(0, 1, 0)),
	})

	require.Len(t, result.Subscriptions, 1)
	assert.Equal(t, 2, result.Subscriptions[0].Frequency)
}

func TestDetect_PartitionsAreExclusiveByType(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	// Same merchant on both sides; refunds must not inflate the debit group.
	result := d.Detect([]transactions.Transaction{
		expense("Amazon", 5000, day(1)),
		expense("Amazon", 7000, day(15)),
		income("Amazon", 5000, day(20)),
	})

	require.Len(t, result.Subscriptions, 1)
	assert.Equal(t, 2, result.Subscriptions[0].Frequency)
	assert.Empty(t, result.IncomeSources)
}

func TestDetect_SortedByTotalDescending(t *testing.T) {
	d := NewDetector(DefaultKeywordRules)

	result := d.Detect([]transactions.Transaction{
		expense("Small Gym", 3000, day(1)),
		expense("Small Gym", 3000, day(29)),
		expense("Big Rent Co", 150000, day(1)),
		expense("Big Rent Co", 150000, day(29)),
	})

	require.Len(t, result.Subscriptions, 2)
	assert.Equal(t, "big rent co", result.Subscriptions[0].MerchantKey)
}

func TestEstimateCadence(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  Cadence
	}{
		{"weekly", []time.Time{day(1), day(8), day(15)}, CadenceWeekly},
		{"monthly", []time.Time{day(1), day(1).AddDate(0, 1, 0), day(1).AddDate(0, 2, 0)}, CadenceMonthly},
		{"quarterly", []time.Time{day(1), day(1).AddDate(0, 3, 0)}, CadenceQuarterly},
		{"annual", []time.Time{day(1), day(1).AddDate(1, 0, 0)}, CadenceAnnual},
		{"single date unknown", []time.Time{day(1)}, CadenceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cadence, _ := estimateCadence(tt.dates)
			assert.Equal(t, tt.want, cadence)
		})
	}
}

func TestKeywordMatcher_TableIsData(t *testing.T) {
	m := NewKeywordMatcher([]KeywordRule{{Pattern: "boxcryptor", Label: "Software"}})

	label, ok := m.Match("BOXCRYPTOR GMBH")
	require.True(t, ok)
	assert.Equal(t, "Software", label)

	_, ok = m.Match("Netflix")
	assert.False(t, ok)
}
