// Package recurring proposes subscription and income-source candidates from
// a user's transaction history. Candidates are proposals only; promotion to a
// confirmed subscription or income record is the caller's decision.
package recurring

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// KeywordRule maps a lowercase substring to the label shown when it fires.
// The table is data: extending coverage means appending a rule, never
// touching the matcher.
type KeywordRule struct {
	Pattern string
	Label   string
}

// DefaultKeywordRules covers services that are unambiguously subscriptions
// by name alone. They let a brand-new subscription be flagged on its first
// occurrence, before the occurrence-count rule can see a repeat.
var DefaultKeywordRules = []KeywordRule{
	{Pattern: "netflix", Label: "Streaming"},
	{Pattern: "spotify", Label: "Music"},
	{Pattern: "hulu", Label: "Streaming"},
	{Pattern: "disney", Label: "Streaming"},
	{Pattern: "hbo", Label: "Streaming"},
	{Pattern: "youtube premium", Label: "Streaming"},
	{Pattern: "apple music", Label: "Music"},
	{Pattern: "audible", Label: "Media"},
	{Pattern: "kindle", Label: "Media"},
	{Pattern: "adobe", Label: "Software"},
	{Pattern: "microsoft 365", Label: "Software"},
	{Pattern: "dropbox", Label: "Software"},
	{Pattern: "icloud", Label: "Software"},
	{Pattern: "github", Label: "Software"},
	{Pattern: "subscription", Label: "Subscription"},
	{Pattern: "membership", Label: "Membership"},
	{Pattern: "gym", Label: "Gym"},
	{Pattern: "fitness", Label: "Gym"},
	{Pattern: "news", Label: "News"},
	{Pattern: "times", Label: "News"},
}

// KeywordMatcher flags merchant names and descriptions that contain a known
// subscription keyword. It builds an Aho-Corasick automaton once so matching
// a transaction is a single pass regardless of table size.
type KeywordMatcher struct {
	matcher *ahocorasick.Matcher
	rules   []KeywordRule
}

// NewKeywordMatcher builds a matcher from the given rules. Patterns are
// matched case-insensitively.
func NewKeywordMatcher(rules []KeywordRule) *KeywordMatcher {
	patterns := make([][]byte, len(rules))
	for i, r := range rules {
		patterns[i] = []byte(strings.ToLower(r.Pattern))
	}
	return &KeywordMatcher{
		matcher: ahocorasick.NewMatcher(patterns),
		rules:   rules,
	}
}

// Match returns the label of the first rule whose pattern occurs in text,
// and whether any rule fired.
func (m *KeywordMatcher) Match(text string) (string, bool) {
	hits := m.matcher.Match([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return "", false
	}
	return m.rules[hits[0]].Label, true
}
