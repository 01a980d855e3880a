package recurring

import (
	"sort"
	"strings"
	"time"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

// Direction separates money-out candidates from money-in candidates.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Candidate is a merchant grouping proposed as a subscription or income
// source. Frequency is the occurrence count inside the analyzed window.
type Candidate struct {
	MerchantKey        string
	DisplayName        string
	Occurrences        []transactions.Transaction
	Frequency          int
	TotalAmountMinor   int64
	AverageAmountMinor int64
	Direction          Direction
	Cadence            Cadence
	CadenceConfidence  float64
	NextExpectedAt     time.Time
	KeywordLabel       string // set when the keyword fast path fired
}

// Result holds both candidate lists of one detection run.
type Result struct {
	Subscriptions []Candidate
	IncomeSources []Candidate
}

// Detector groups transactions by merchant and proposes recurring
// candidates. Grouping is exact case-insensitive string equality; merchant
// variations that survive normalization stay separate groups.
type Detector struct {
	keywords *KeywordMatcher
}

// NewDetector creates a Detector with the given keyword rules. Pass
// DefaultKeywordRules unless the caller maintains its own table.
func NewDetector(rules []KeywordRule) *Detector {
	return &Detector{keywords: NewKeywordMatcher(rules)}
}

// Detect partitions transactions by type, groups each partition by merchant
// key, and applies the candidacy rules: credits need at least two
// occurrences (a one-off deposit is not income in the recurring sense);
// debits qualify with two occurrences or a single occurrence whose merchant
// or description matches the keyword table.
func (d *Detector) Detect(txs []transactions.Transaction) Result {
	debits := make(map[string][]transactions.Transaction)
	credits := make(map[string][]transactions.Transaction)

	for _, tx := range txs {
		key := strings.ToLower(strings.TrimSpace(tx.MerchantKey()))
		if key == "" {
			continue
		}
		switch tx.Type {
		case transactions.TypeExpense:
			debits[key] = append(debits[key], tx)
		case transactions.TypeIncome:
			credits[key] = append(credits[key], tx)
		}
	}

	var result Result

	for key, group := range debits {
		label, matched := d.matchKeyword(group)
		if len(group) < 2 && !matched {
			continue
		}
		c := buildCandidate(key, group, DirectionDebit)
		c.KeywordLabel = label
		if c.Frequency == 1 {
			// A single keyword hit gives no interval to measure; assume the
			// dominant consumer cadence at low confidence.
			c.Cadence = CadenceMonthly
			c.CadenceConfidence = 0.25
			c.NextExpectedAt = nextExpected(group[0].PostedAt, CadenceMonthly)
		}
		result.Subscriptions = append(result.Subscriptions, c)
	}

	for key, group := range credits {
		if len(group) < 2 {
			continue
		}
		result.IncomeSources = append(result.IncomeSources, buildCandidate(key, group, DirectionCredit))
	}

	sortCandidates(result.Subscriptions)
	sortCandidates(result.IncomeSources)
	return result
}

func (d *Detector) matchKeyword(group []transactions.Transaction) (string, bool) {
	for _, tx := range group {
		if label, ok := d.keywords.Match(tx.MerchantName); ok {
			return label, true
		}
		if label, ok := d.keywords.Match(tx.Description); ok {
			return label, true
		}
	}
	return "", false
}

func buildCandidate(key string, group []transactions.Transaction, dir Direction) Candidate {
	var total int64
	dates := make([]time.Time, 0, len(group))
	lastSeen := group[0].PostedAt
	for _, tx := range group {
		total += tx.AmountMinor
		dates = append(dates, tx.PostedAt)
		if tx.PostedAt.After(lastSeen) {
			lastSeen = tx.PostedAt
		}
	}

	cadence, confidence := estimateCadence(dates)

	return Candidate{
		MerchantKey:        key,
		DisplayName:        group[0].MerchantKey(),
		Occurrences:        group,
		Frequency:          len(group),
		TotalAmountMinor:   total,
		AverageAmountMinor: total / int64(len(group)),
		Direction:          dir,
		Cadence:            cadence,
		CadenceConfidence:  confidence,
		NextExpectedAt:     nextExpected(lastSeen, cadence),
	}
}

// sortCandidates orders by total amount descending, then by key so equal
// totals stay deterministic.
func sortCandidates(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].TotalAmountMinor != cs[j].TotalAmountMinor {
			return cs[i].TotalAmountMinor > cs[j].TotalAmountMinor
		}
		return cs[i].MerchantKey < cs[j].MerchantKey
	})
}
