package challenges

import (
	"fmt"
	"math"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/finpulse/finpulse/internal/domain/transactions"
	"github.com/finpulse/finpulse/pkg/money"
)

// Profile is the user's derived spending profile the analyzer assembles
// from the aggregator's and detector's outputs.
type Profile struct {
	CategorySpendMinor map[transactions.Category]int64
	BudgetLimits       map[transactions.Category]int64
	MonthlyIncomeMinor int64
	MonthlySpendMinor  int64
	SubscriptionCount  int
	Currency           string
}

// SavingsRate returns the profile's savings rate in percent, zero when there
// is no income.
func (p Profile) SavingsRate() float64 {
	if p.MonthlyIncomeMinor <= 0 {
		return 0
	}
	saved := p.MonthlyIncomeMinor - p.MonthlySpendMinor
	return float64(saved) / float64(p.MonthlyIncomeMinor) * 100
}

func (p Profile) currency() string {
	if p.Currency == "" {
		return money.USD
	}
	return p.Currency
}

var debtKeywords = []string{"debt", "loan", "credit"}

// Personalize filters templates against the profile and rewrites the
// surviving descriptions with the user's actual numbers. Templates whose id
// is in alreadyJoinedIDs are skipped; the catalog itself is never mutated.
func Personalize(templates []Template, profile Profile, alreadyJoinedIDs []string) []Challenge {
	joined := make(map[string]bool, len(alreadyJoinedIDs))
	for _, id := range alreadyJoinedIDs {
		joined[id] = true
	}

	var out []Challenge
	for _, tpl := range templates {
		if joined[tpl.ID] {
			continue
		}
		if !relevant(tpl, profile) {
			continue
		}
		out = append(out, personalizeOne(tpl, profile))
	}
	return out
}

// relevant applies the per-criteria predicate.
func relevant(tpl Template, p Profile) bool {
	switch tpl.Criteria.Type {
	case CriteriaNoSpending, CriteriaInvestment:
		return true
	case CriteriaCategoryReduction:
		category, ok := matchTitleCategory(tpl.Title, p)
		return ok && p.CategorySpendMinor[category] > 0
	case CriteriaDebtPayment:
		_, ok := debtCategory(p)
		return ok
	case CriteriaUnderBudget:
		return len(p.BudgetLimits) > 0
	case CriteriaSavingsRate:
		return p.MonthlyIncomeMinor > 0
	case CriteriaSubscriptionReduction:
		return float64(p.SubscriptionCount) >= tpl.Criteria.Threshold
	default:
		return false
	}
}

// matchTitleCategory finds the profile category a reduction template is
// about by fuzzy-matching the template title's words against category names.
// "Dining Out Diet" lands on Food & Dining without an explicit mapping.
func matchTitleCategory(title string, p Profile) (transactions.Category, bool) {
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if len(word) < 4 {
			continue
		}
		for category := range p.CategorySpendMinor {
			if fuzzy.MatchNormalizedFold(word, string(category)) {
				return category, true
			}
		}
	}
	return "", false
}

func debtCategory(p Profile) (transactions.Category, bool) {
	for category, spend := range p.CategorySpendMinor {
		if spend <= 0 {
			continue
		}
		lower := strings.ToLower(string(category))
		for _, kw := range debtKeywords {
			if strings.Contains(lower, kw) {
				return category, true
			}
		}
	}
	return "", false
}

// personalizeOne rewrites the template description by targeted replacement
// of its placeholder fragments, leaving the template untouched.
func personalizeOne(tpl Template, p Profile) Challenge {
	ch := Challenge{
		TemplateID:  tpl.ID,
		Title:       tpl.Title,
		Description: tpl.Description,
		Criteria:    tpl.Criteria,
	}

	switch tpl.Criteria.Type {
	case CriteriaCategoryReduction:
		if category, ok := matchTitleCategory(tpl.Title, p); ok {
			spend := money.New(p.CategorySpendMinor[category], p.currency())
			ch.Description = strings.Replace(ch.Description, "$X", spend.Display(), 1)
		}

	case CriteriaDebtPayment:
		if category, ok := debtCategory(p); ok {
			ch.Description = strings.Replace(ch.Description, "DEBT", string(category), 1)
		}

	case CriteriaUnderBudget:
		ch.Description = strings.Replace(ch.Description, "your N budget limits",
			fmt.Sprintf("your %d budget limits", len(p.BudgetLimits)), 1)

	case CriteriaSavingsRate:
		current := p.SavingsRate()
		target := current + tpl.Criteria.Threshold
		ch.Description = strings.Replace(ch.Description, "R%", fmt.Sprintf("%.0f%%", current), 1)
		ch.Description = strings.Replace(ch.Description, "T%", fmt.Sprintf("%.0f%%", target), 1)

	case CriteriaSubscriptionReduction:
		// The cancel target never exceeds what the template asked for, even
		// for users with many subscriptions.
		target := int(math.Min(tpl.Criteria.Threshold, float64(p.SubscriptionCount)))
		ch.Criteria.Threshold = float64(target)
		ch.Description = strings.Replace(ch.Description, "at least 2",
			fmt.Sprintf("at least %d", target), 1)
		ch.Description = strings.Replace(ch.Description, "your S subscriptions",
			fmt.Sprintf("your %d subscriptions", p.SubscriptionCount), 1)
	}

	return ch
}
