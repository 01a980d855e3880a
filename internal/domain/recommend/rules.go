package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/finpulse/finpulse/internal/domain/budget"
	"github.com/finpulse/finpulse/internal/domain/recurring"
	"github.com/finpulse/finpulse/internal/domain/transactions"
	"github.com/finpulse/finpulse/pkg/money"
)

// Rule thresholds. Each rule fires only past its gate so quiet months
// produce few or no recommendations.
const (
	// topCategoryShareGate: the top spending category must carry more than
	// this share of total spend before a concentration warning fires.
	topCategoryShareGate = 30

	// diningFloorMinor: absolute monthly dining spend below this never
	// triggers a dining recommendation, whatever its share.
	diningFloorMinor = 30000 // $300

	// subscriptionAuditGate: an audit fires only with more than this many
	// active recurring candidates.
	subscriptionAuditGate = 3

	// savingsRateTarget is the minimum monthly savings rate in percent.
	savingsRateTarget = 10.0
)

// Generator produces the deterministic, rule-based recommendation sets.
// Each domain yields at most three recommendations.
type Generator struct {
	currency string
}

// NewGenerator creates a Generator formatting impact text in the given
// currency.
func NewGenerator(currency string) *Generator {
	if currency == "" {
		currency = money.USD
	}
	return &Generator{currency: currency}
}

func (g *Generator) display(amountMinor int64) string {
	return money.New(amountMinor, g.currency).Display()
}

// Spending derives recommendations from the budget aggregates. Rules, in
// priority order: over-limit categories, spend concentration in the top
// category, and elevated dining spend.
func (g *Generator) Spending(totals []budget.CategoryTotal, now time.Time) []Recommendation {
	var recs []Recommendation
	totalSpend := budget.TotalSpend(totals)

	for _, ct := range totals {
		if !ct.OverLimit() {
			continue
		}
		over := ct.CurrentAmountMinor - ct.LimitMinor
		recs = append(recs, Recommendation{
			ID:     newID(DomainSpending, "over-limit"),
			Domain: DomainSpending,
			Title:  fmt.Sprintf("%s is over budget", ct.Category),
			Description: fmt.Sprintf("You've spent %s of your %s %s budget this month.",
				g.display(ct.CurrentAmountMinor), g.display(ct.LimitMinor), ct.Category),
			ImpactText: fmt.Sprintf("Get back on budget to save %s next month", g.display(over)),
			Confidence: ConfidenceHigh,
			CreatedAt:  now,
		})
		break // only the top over-limit category; totals are sorted by spend
	}

	// Totals are sorted descending, so the concentration rule reads index 0.
	if len(totals) > 0 && totalSpend > 0 && totals[0].PercentageOfTotal > topCategoryShareGate {
		top := totals[0]
		trim := money.New(top.CurrentAmountMinor, g.currency).Percent(10)
		recs = append(recs, Recommendation{
			ID:     newID(DomainSpending, "concentration"),
			Domain: DomainSpending,
			Title:  fmt.Sprintf("%s dominates your spending", top.Category),
			Description: fmt.Sprintf("%s made up %d%% of this month's spend.",
				top.Category, top.PercentageOfTotal),
			ImpactText: fmt.Sprintf("Trimming it 10%% frees up %s per month", trim.Display()),
			Confidence: ConfidenceMedium,
			CreatedAt:  now,
		})
	}

	for _, ct := range totals {
		if ct.Category != transactions.CategoryFoodDining || ct.CurrentAmountMinor < diningFloorMinor {
			continue
		}
		cut := money.New(ct.CurrentAmountMinor, g.currency).Percent(20)
		recs = append(recs, Recommendation{
			ID:     newID(DomainSpending, "dining"),
			Domain: DomainSpending,
			Title:  "Dining out is adding up",
			Description: fmt.Sprintf("You spent %s on dining this month.",
				g.display(ct.CurrentAmountMinor)),
			ImpactText: fmt.Sprintf("Cooking in a few more nights could save %s", cut.Display()),
			Confidence: ConfidenceMedium,
			CreatedAt:  now,
		})
		break
	}

	return capRecs(recs)
}

// Subscriptions recommends an audit when the candidate count clears the
// gate, plus a cancel suggestion for the priciest monthly-equivalent
// candidate when total recurring spend is significant.
func (g *Generator) Subscriptions(candidates []recurring.Candidate, now time.Time) []Recommendation {
	var recs []Recommendation
	if len(candidates) == 0 {
		return recs
	}

	var totalMonthly int64
	var priciest recurring.Candidate
	var priciestMonthly int64
	for _, c := range candidates {
		monthly := monthlyEquivalent(c)
		totalMonthly += monthly
		if monthly > priciestMonthly {
			priciest = c
			priciestMonthly = monthly
		}
	}

	if len(candidates) > subscriptionAuditGate {
		recs = append(recs, Recommendation{
			ID:     newID(DomainSubscriptions, "audit"),
			Domain: DomainSubscriptions,
			Title:  "Time for a subscription audit",
			Description: fmt.Sprintf("We found %d recurring charges totaling about %s per month.",
				len(candidates), g.display(totalMonthly)),
			ImpactText: fmt.Sprintf("Canceling just one could save up to %s per year",
				g.display(priciestMonthly*12)),
			Confidence: ConfidenceHigh,
			CreatedAt:  now,
		})
	}

	if priciestMonthly > 0 && len(candidates) > 1 {
		recs = append(recs, Recommendation{
			ID:     newID(DomainSubscriptions, "priciest"),
			Domain: DomainSubscriptions,
			Title:  fmt.Sprintf("Review %s", priciest.DisplayName),
			Description: fmt.Sprintf("%s is your most expensive recurring charge at about %s per month.",
				priciest.DisplayName, g.display(priciestMonthly)),
			ImpactText: fmt.Sprintf("Dropping it saves %s per year", g.display(priciestMonthly*12)),
			Confidence: ConfidenceMedium,
			CreatedAt:  now,
		})
	}

	return capRecs(recs)
}

// Savings compares monthly income against spend and recommends closing the
// gap to the target savings rate.
func (g *Generator) Savings(totalIncomeMinor, totalSpendMinor int64, now time.Time) []Recommendation {
	var recs []Recommendation
	if totalIncomeMinor <= 0 {
		return recs
	}

	saved := totalIncomeMinor - totalSpendMinor
	rate := float64(saved) / float64(totalIncomeMinor) * 100

	if saved < 0 {
		recs = append(recs, Recommendation{
			ID:     newID(DomainSavings, "deficit"),
			Domain: DomainSavings,
			Title:  "You spent more than you earned",
			Description: fmt.Sprintf("Spending exceeded income by %s this month.",
				g.display(-saved)),
			ImpactText: fmt.Sprintf("Closing the gap stops %s of monthly debt buildup", g.display(-saved)),
			Confidence: ConfidenceHigh,
			CreatedAt:  now,
		})
		return recs
	}

	if rate < savingsRateTarget {
		targetSaved := int64(float64(totalIncomeMinor) * savingsRateTarget / 100)
		gap := targetSaved - saved
		recs = append(recs, Recommendation{
			ID:     newID(DomainSavings, "rate"),
			Domain: DomainSavings,
			Title:  "Boost your savings rate",
			Description: fmt.Sprintf("You saved %.0f%% of income this month; a %d%% rate is a common baseline.",
				rate, int(savingsRateTarget)),
			ImpactText: fmt.Sprintf("Setting aside %s more reaches the target", g.display(gap)),
			Confidence: ConfidenceMedium,
			CreatedAt:  now,
		})
	}

	return capRecs(recs)
}

// Debt fires when the debt-payments category carries spend, suggesting an
// accelerated payoff with a computed extra-payment impact.
func (g *Generator) Debt(totals []budget.CategoryTotal, now time.Time) []Recommendation {
	var recs []Recommendation

	for _, ct := range totals {
		if !isDebtCategory(ct.Category) || ct.CurrentAmountMinor == 0 {
			continue
		}
		extra := money.New(ct.CurrentAmountMinor, g.currency).Percent(10)
		recs = append(recs, Recommendation{
			ID:     newID(DomainDebt, "accelerate"),
			Domain: DomainDebt,
			Title:  "Accelerate your debt payoff",
			Description: fmt.Sprintf("You paid %s toward debt this month.",
				g.display(ct.CurrentAmountMinor)),
			ImpactText: fmt.Sprintf("Paying %s extra per month shortens the payoff and cuts interest",
				extra.Display()),
			Confidence: ConfidenceMedium,
			CreatedAt:  now,
		})
		break
	}

	return capRecs(recs)
}

// monthlyEquivalent normalizes a candidate's average amount to a monthly
// figure by cadence.
func monthlyEquivalent(c recurring.Candidate) int64 {
	switch c.Cadence {
	case recurring.CadenceWeekly:
		return c.AverageAmountMinor * 4
	case recurring.CadenceQuarterly:
		return c.AverageAmountMinor / 3
	case recurring.CadenceAnnual:
		return c.AverageAmountMinor / 12
	default:
		return c.AverageAmountMinor
	}
}

func isDebtCategory(c transactions.Category) bool {
	if c == transactions.CategoryDebtPayments {
		return true
	}
	lower := strings.ToLower(string(c))
	return strings.Contains(lower, "debt") || strings.Contains(lower, "loan") || strings.Contains(lower, "credit")
}

// capRecs enforces the 0-3 per-domain budget.
func capRecs(recs []Recommendation) []Recommendation {
	if len(recs) > 3 {
		return recs[:3]
	}
	return recs
}
