package recurring

import (
	"math"
	"sort"
	"time"
)

// Cadence is the estimated charge interval of a candidate.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceAnnual    Cadence = "annual"
	CadenceUnknown   Cadence = "unknown"
)

// estimateCadence classifies the mean gap between occurrences and returns a
// confidence in [0,1] derived from how regular the gaps are. Fewer than two
// dates cannot support an estimate.
func estimateCadence(dates []time.Time) (Cadence, float64) {
	if len(dates) < 2 {
		return CadenceUnknown, 0
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var intervals []float64
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, sorted[i].Sub(sorted[i-1]).Hours()/24)
	}

	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	avg := sum / float64(len(intervals))

	var variance float64
	for _, iv := range intervals {
		variance += math.Pow(iv-avg, 2)
	}
	stddev := math.Sqrt(variance / float64(len(intervals)))

	confidence := 1.0
	if avg > 0 {
		confidence = 1.0 - math.Min(stddev/avg, 1.0)
	}

	var cadence Cadence
	switch {
	case avg >= 5 && avg <= 9:
		cadence = CadenceWeekly
	case avg >= 25 && avg <= 35:
		cadence = CadenceMonthly
	case avg >= 85 && avg <= 100:
		cadence = CadenceQuarterly
	case avg >= 350 && avg <= 380:
		cadence = CadenceAnnual
	default:
		cadence = CadenceUnknown
		confidence *= 0.5
	}

	return cadence, confidence
}

// nextExpected predicts the next charge after lastSeen for a cadence.
// Unknown cadences default to monthly, the dominant interval for consumer
// subscriptions.
func nextExpected(lastSeen time.Time, cadence Cadence) time.Time {
	switch cadence {
	case CadenceWeekly:
		return lastSeen.AddDate(0, 0, 7)
	case CadenceQuarterly:
		return lastSeen.AddDate(0, 3, 0)
	case CadenceAnnual:
		return lastSeen.AddDate(1, 0, 0)
	default:
		return lastSeen.AddDate(0, 1, 0)
	}
}
