// Package challenges personalizes a static catalog of gamified financial
// tasks against a user's derived spending profile.
package challenges

// CriteriaType selects the relevance predicate a template is filtered with.
type CriteriaType string

const (
	CriteriaNoSpending            CriteriaType = "no_spending"
	CriteriaCategoryReduction     CriteriaType = "category_reduction"
	CriteriaDebtPayment           CriteriaType = "debt_payment"
	CriteriaInvestment            CriteriaType = "investment"
	CriteriaUnderBudget           CriteriaType = "under_budget"
	CriteriaSavingsRate           CriteriaType = "savings_rate"
	CriteriaSubscriptionReduction CriteriaType = "subscription_reduction"
)

// Criteria parameterizes a template's relevance predicate and goal.
type Criteria struct {
	Type          CriteriaType
	Threshold     float64
	TimeframeDays int
}

// Template is a static catalog entry. Personalization never mutates it.
type Template struct {
	ID          string
	Title       string
	Description string
	Criteria    Criteria
}

// Challenge is a template personalized with the user's actual numbers.
type Challenge struct {
	TemplateID  string
	Title       string
	Description string
	Criteria    Criteria
}

// Catalog is the built-in challenge set. Descriptions carry the literal
// placeholders the personalizer rewrites; keep both in sync when editing.
var Catalog = []Template{
	{
		ID:          "no-spend-weekend",
		Title:       "No-Spend Weekend",
		Description: "Go a full weekend without any discretionary spending.",
		Criteria:    Criteria{Type: CriteriaNoSpending, TimeframeDays: 2},
	},
	{
		ID:          "dining-diet",
		Title:       "Dining Out Diet",
		Description: "Cut your dining spending of $X this month by 25%.",
		Criteria:    Criteria{Type: CriteriaCategoryReduction, Threshold: 25, TimeframeDays: 30},
	},
	{
		ID:          "shopping-freeze",
		Title:       "Shopping Freeze",
		Description: "Cut your shopping spending of $X this month by 25%.",
		Criteria:    Criteria{Type: CriteriaCategoryReduction, Threshold: 25, TimeframeDays: 30},
	},
	{
		ID:          "debt-snowball",
		Title:       "Debt Snowball Sprint",
		Description: "Put an extra payment toward your DEBT balance this month.",
		Criteria:    Criteria{Type: CriteriaDebtPayment, TimeframeDays: 30},
	},
	{
		ID:          "first-invest",
		Title:       "Start Investing",
		Description: "Make one investment contribution, however small, this month.",
		Criteria:    Criteria{Type: CriteriaInvestment, TimeframeDays: 30},
	},
	{
		ID:          "under-budget-month",
		Title:       "Under Budget Across the Board",
		Description: "Finish the month under every one of your N budget limits.",
		Criteria:    Criteria{Type: CriteriaUnderBudget, TimeframeDays: 30},
	},
	{
		ID:          "savings-push",
		Title:       "Savings Rate Push",
		Description: "Raise your savings rate from R% to T% this month.",
		Criteria:    Criteria{Type: CriteriaSavingsRate, Threshold: 5, TimeframeDays: 30},
	},
	{
		ID:          "subscription-trim",
		Title:       "Subscription Trim",
		Description: "Cancel at least 2 of your S subscriptions this month.",
		Criteria:    Criteria{Type: CriteriaSubscriptionReduction, Threshold: 2, TimeframeDays: 30},
	},
}
