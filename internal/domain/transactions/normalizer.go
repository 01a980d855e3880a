package transactions

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dateLayouts are tried in order when a raw record only carries a textual
// date. Providers are wildly inconsistent here.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// Normalizer converts raw provider records into canonical Transactions.
// It is a pure function of its inputs: the reference time is injected so
// date defaulting stays deterministic under test.
type Normalizer struct {
	sanitizer *merchantSanitizer
}

// NewNormalizer creates a Normalizer with the default merchant cleanup rules.
func NewNormalizer() *Normalizer {
	return &Normalizer{sanitizer: newMerchantSanitizer()}
}

// Normalize maps every raw record to a canonical Transaction for userID.
// Dirty data never fails: a missing category defaults to Uncategorized, an
// unparseable or missing date is coerced to now (a documented lossy
// fallback), and provider sign conventions collapse into Type with a
// non-negative amount.
func (n *Normalizer) Normalize(userID uuid.UUID, records []RawRecord, now time.Time) []Transaction {
	out := make([]Transaction, 0, len(records))
	for _, r := range records {
		out = append(out, n.normalizeOne(userID, r, now))
	}
	return out
}

func (n *Normalizer) normalizeOne(userID uuid.UUID, r RawRecord, now time.Time) Transaction {
	tx := Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		CurrencyCode: r.CurrencyCode,
		Description:  strings.TrimSpace(r.Description),
		PostedAt:     resolveDate(r, now),
	}

	if r.ExternalID != "" {
		extID := r.ExternalID
		tx.ExternalID = &extID
	}
	if tx.CurrencyCode == "" {
		tx.CurrencyCode = "USD"
	}

	// Direction: an explicit provider type wins; otherwise the sign carries
	// it (negative = money out for feed records). The canonical amount is
	// always the absolute value.
	switch strings.ToLower(r.Type) {
	case string(TypeIncome):
		tx.Type = TypeIncome
	case string(TypeExpense):
		tx.Type = TypeExpense
	default:
		if r.AmountMinor < 0 {
			tx.Type = TypeExpense
		} else {
			tx.Type = TypeIncome
		}
	}
	tx.AmountMinor = r.AmountMinor
	if tx.AmountMinor < 0 {
		tx.AmountMinor = -tx.AmountMinor
	}

	tx.Category = resolveCategory(r.Category, tx.Type)

	merchant := r.MerchantName
	if merchant == "" {
		merchant = r.Description
	}
	tx.MerchantName = n.sanitizer.clean(merchant)

	return tx
}

// resolveDate picks the record's own timestamp when present, then tries the
// known textual layouts, and finally falls back to now.
func resolveDate(r RawRecord, now time.Time) time.Time {
	if !r.PostedAt.IsZero() {
		return r.PostedAt
	}
	raw := strings.TrimSpace(r.RawDate)
	if raw == "" {
		return now
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}

// resolveCategory maps a free-form provider category onto the closed set.
// Unknown labels are kept only when they match a known category
// case-insensitively; anything else becomes Uncategorized so the aggregator
// can route it into its catch-all bucket.
func resolveCategory(raw string, txType TxType) Category {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if txType == TypeIncome {
			return CategoryIncome
		}
		return CategoryUncategorized
	}
	for _, known := range KnownCategories {
		if strings.EqualFold(raw, string(known)) {
			return known
		}
	}
	return CategoryUncategorized
}

// merchantSanitizer strips transaction-processor noise from merchant names
// so recurring detection groups "POS NETFLIX 004512" with "Netflix".
type merchantSanitizer struct {
	prefixes   []string
	refPattern *regexp.Regexp
	spaces     *regexp.Regexp
}

func newMerchantSanitizer() *merchantSanitizer {
	return &merchantSanitizer{
		prefixes: []string{
			"POS ", "TST* ", "TST ", "SQ* ", "SQ ", "PAYPAL *", "PAYPAL ",
			"PURCHASE ", "PAYMENT ", "VISA ", "MASTERCARD ", "DEBIT ",
		},
		refPattern: regexp.MustCompile(`\s+[#]?\d{4,}$`),
		spaces:     regexp.MustCompile(`\s+`),
	}
}

func (s *merchantSanitizer) clean(raw string) string {
	result := strings.TrimSpace(raw)
	upper := strings.ToUpper(result)
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(upper, prefix) {
			result = result[len(prefix):]
			break
		}
	}
	result = s.refPattern.ReplaceAllString(result, "")
	result = s.spaces.ReplaceAllString(result, " ")
	return titleCase(strings.TrimSpace(result))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}
