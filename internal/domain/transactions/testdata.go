package transactions

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// FixtureGenerator produces realistic transaction fixtures for tests and
// local seeding. Seed it for reproducible runs.
type FixtureGenerator struct {
	faker  *gofakeit.Faker
	userID uuid.UUID
}

// NewFixtureGenerator creates a generator with the given seed.
func NewFixtureGenerator(seed int64) *FixtureGenerator {
	return &FixtureGenerator{
		faker:  gofakeit.New(seed),
		userID: uuid.New(),
	}
}

// UserID returns the user all generated fixtures belong to.
func (g *FixtureGenerator) UserID() uuid.UUID { return g.userID }

// Expense generates a single expense in the given category and month.
func (g *FixtureGenerator) Expense(category Category, month time.Time, amountMinor int64) Transaction {
	day := g.faker.Number(1, 28)
	return Transaction{
		ID:           uuid.New(),
		UserID:       g.userID,
		AmountMinor:  amountMinor,
		CurrencyCode: "USD",
		PostedAt:     time.Date(month.Year(), month.Month(), day, 12, 0, 0, 0, time.UTC),
		Description:  g.faker.Company(),
		Category:     category,
		Type:         TypeExpense,
		MerchantName: g.faker.Company(),
	}
}

// Income generates a single income transaction in the given month.
func (g *FixtureGenerator) Income(month time.Time, amountMinor int64, merchant string) Transaction {
	day := g.faker.Number(1, 28)
	return Transaction{
		ID:           uuid.New(),
		UserID:       g.userID,
		AmountMinor:  amountMinor,
		CurrencyCode: "USD",
		PostedAt:     time.Date(month.Year(), month.Month(), day, 9, 0, 0, 0, time.UTC),
		Description:  "Direct deposit",
		Category:     CategoryIncome,
		Type:         TypeIncome,
		MerchantName: merchant,
	}
}

// MonthOfSpending generates n expenses spread across the known categories
// for one calendar month.
func (g *FixtureGenerator) MonthOfSpending(month time.Time, n int) []Transaction {
	spendable := []Category{
		CategoryFoodDining, CategoryGroceries, CategoryTransportation,
		CategoryEntertainment, CategoryShopping, CategoryUtilities,
	}
	txs := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		category := spendable[g.faker.Number(0, len(spendable)-1)]
		amount := int64(g.faker.Number(500, 25000))
		txs = append(txs, g.Expense(category, month, amount))
	}
	return txs
}
