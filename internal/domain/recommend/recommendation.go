// Package recommend produces rule-based financial recommendations and an
// optional generative-text enhancement pass that degrades safely to the
// deterministic set.
package recommend

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain identifies the rule set that produced a recommendation.
type Domain string

const (
	DomainSpending      Domain = "spending"
	DomainSubscriptions Domain = "subscriptions"
	DomainSavings       Domain = "savings"
	DomainDebt          Domain = "debt"
)

// Confidence is the strength of a recommendation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Recommendation is one actionable suggestion. Applied and Dismissed are the
// only fields the UI layer mutates after emission.
type Recommendation struct {
	ID          string
	Domain      Domain
	Title       string
	Description string
	ImpactText  string
	Confidence  Confidence
	Applied     bool
	Dismissed   bool
	CreatedAt   time.Time
}

// newID builds a deterministic-rule recommendation id.
func newID(domain Domain, rule string) string {
	return fmt.Sprintf("%s-%s-%s", domain, rule, uuid.New().String()[:8])
}
