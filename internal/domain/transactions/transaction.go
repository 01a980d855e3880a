// Package transactions defines the canonical transaction model and the
// normalizer that converts heterogeneous raw records (manual entry, CSV/Excel
// import, bank-aggregator feed) into it.
package transactions

import (
	"time"

	"github.com/google/uuid"
)

// TxType distinguishes money out from money in. Amounts are always
// non-negative; direction is carried here, never by sign.
type TxType string

const (
	TypeExpense TxType = "expense"
	TypeIncome  TxType = "income"
)

// Category is a budget category. The set is closed: anything a caller
// supplies outside the known set aggregates under CategoryOther, and a
// missing category normalizes to CategoryUncategorized.
type Category string

const (
	CategoryFoodDining     Category = "Food & Dining"
	CategoryGroceries      Category = "Groceries"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryUtilities      Category = "Utilities"
	CategoryHousing        Category = "Housing"
	CategoryHealth         Category = "Health"
	CategorySubscriptions  Category = "Subscriptions"
	CategoryTravel         Category = "Travel"
	CategoryDebtPayments   Category = "Debt Payments"
	CategoryEducation      Category = "Education"
	CategoryIncome         Category = "Income"
	CategoryUncategorized  Category = "Uncategorized"
	CategoryOther          Category = "Other"
)

// KnownCategories lists every category that can carry its own budget bucket.
// CategoryOther is the mandatory catch-all and is excluded here on purpose.
var KnownCategories = []Category{
	CategoryFoodDining,
	CategoryGroceries,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHousing,
	CategoryHealth,
	CategorySubscriptions,
	CategoryTravel,
	CategoryDebtPayments,
	CategoryEducation,
	CategoryIncome,
	CategoryUncategorized,
}

// IsKnown reports whether c is part of the closed category set.
func (c Category) IsKnown() bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// Transaction is the canonical record every analytical component consumes.
// Invariant: AmountMinor >= 0. Records coming from an upstream feed carry an
// ExternalID and are upserted against it; manual entries have none and always
// insert.
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ExternalID   *string
	AmountMinor  int64
	CurrencyCode string
	PostedAt     time.Time
	Description  string
	Category     Category
	Type         TxType
	MerchantName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MerchantKey returns the grouping key used by recurring-pattern detection:
// the merchant name when present, otherwise the description. Callers compare
// keys case-insensitively.
func (t *Transaction) MerchantKey() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Description
}

// Source identifies where a raw record came from.
type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
	SourceFeed   Source = "feed"
)

// RawRecord is a provider-shaped transaction before normalization.
// AmountMinor keeps the provider's sign convention: feeds commonly encode
// expenses as negative and income as positive (some the other way around for
// card accounts; see Normalizer). PostedAt may be zero when only RawDate is
// available, and RawDate may be unparseable.
type RawRecord struct {
	ExternalID   string
	AmountMinor  int64
	CurrencyCode string
	PostedAt     time.Time
	RawDate      string
	Description  string
	MerchantName string
	Category     string
	Type         string // "expense"/"income" when the provider states it
	Source       Source
}
