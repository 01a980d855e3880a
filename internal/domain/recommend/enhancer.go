package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"reflect"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// maxPayloadItems caps the serialized context sent to the model so
	// prompts stay inside token budgets.
	maxPayloadItems = 5

	defaultEnhanceTimeout = 10 * time.Second
)

// Enhancer optionally rewrites deterministic recommendations through a
// generative-text model. It is strictly additive: on any failure the caller
// gets the base set back unchanged, and Enhance never returns an error.
type Enhancer struct {
	gen     TextGenerator
	limiter *rate.Limiter
	logger  *slog.Logger
	timeout time.Duration
}

// NewEnhancer creates an Enhancer. gen may be nil when no generative-text
// credential is configured; every call then falls through to the base set.
func NewEnhancer(gen TextGenerator, logger *slog.Logger) *Enhancer {
	return &Enhancer{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:  logger,
		timeout: defaultEnhanceTimeout,
	}
}

// enhancedItem is the JSON shape the model is asked to return.
type enhancedItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Confidence  string `json:"confidence"`
}

// Enhance asks the model to rewrite and rank the base recommendations using
// a size-bounded serialization of data as context. Every failure mode
// (unconfigured generator, rate limit, transport error, timeout, non-JSON
// response, wrong shape, empty array) logs a warning and returns base.
func (e *Enhancer) Enhance(ctx context.Context, domain Domain, base []Recommendation, data any, totalSpendingMinor int64) []Recommendation {
	if len(base) == 0 {
		return base
	}
	if e == nil || e.gen == nil {
		enhancementOutcomes.WithLabelValues(outcomeSkipped).Inc()
		return base
	}
	if !e.limiter.Allow() {
		enhancementOutcomes.WithLabelValues(outcomeSkipped).Inc()
		e.logger.Warn("enhancement rate limited", slog.String("domain", string(domain)))
		return base
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt, err := e.buildPrompt(domain, base, data, totalSpendingMinor)
	if err != nil {
		return e.fallback(domain, base, err)
	}

	raw, err := e.gen.GenerateText(ctx, prompt)
	if err != nil {
		return e.fallback(domain, base, err)
	}

	items, err := parseEnhanced(raw)
	if err != nil {
		return e.fallback(domain, base, err)
	}

	now := time.Now()
	enhanced := make([]Recommendation, 0, len(items))
	for _, item := range items {
		enhanced = append(enhanced, Recommendation{
			ID:          enhancedID(domain, now),
			Domain:      domain,
			Title:       item.Title,
			Description: item.Description,
			ImpactText:  item.Impact,
			Confidence:  normalizeConfidence(item.Confidence),
			CreatedAt:   now,
		})
	}

	enhancementOutcomes.WithLabelValues(outcomeEnhanced).Inc()
	return enhanced
}

func (e *Enhancer) fallback(domain Domain, base []Recommendation, err error) []Recommendation {
	enhancementOutcomes.WithLabelValues(outcomeFallback).Inc()
	e.logger.Warn("recommendation enhancement failed, using deterministic set",
		slog.String("domain", string(domain)),
		slog.Any("error", err),
	)
	return base
}

func (e *Enhancer) buildPrompt(domain Domain, base []Recommendation, data any, totalSpendingMinor int64) (string, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return "", fmt.Errorf("marshal base recommendations: %w", err)
	}

	dataJSON, err := json.Marshal(capItems(data))
	if err != nil {
		return "", fmt.Errorf("marshal context data: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a personal-finance assistant. Rewrite and rank the following ")
	fmt.Fprintf(&b, "%s recommendations to be specific and encouraging.\n\n", domain)
	fmt.Fprintf(&b, "User's total monthly spending in cents: %d\n\n", totalSpendingMinor)
	fmt.Fprintf(&b, "Context data:\n%s\n\n", dataJSON)
	fmt.Fprintf(&b, "Current recommendations:\n%s\n\n", baseJSON)
	b.WriteString("Respond with STRICT JSON only: a JSON array of objects, each with exactly ")
	b.WriteString(`these string fields: "title", "description", "impact", "confidence" `)
	b.WriteString(`(confidence one of "high", "medium", "low"). `)
	b.WriteString("No Markdown, no comments, no extra text.")

	return b.String(), nil
}

// capItems bounds a slice payload to maxPayloadItems; non-slice payloads
// pass through untouched.
func capItems(data any) any {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice && v.Len() > maxPayloadItems {
		return v.Slice(0, maxPayloadItems).Interface()
	}
	return data
}

// parseEnhanced validates the model output against the contract. Markdown
// fences are tolerated; everything else about the shape is strict.
func parseEnhanced(raw string) ([]enhancedItem, error) {
	clean := stripFences(raw)

	var items []enhancedItem
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("response array is empty")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("item %d missing title or description", i)
		}
	}
	return items, nil
}

// stripFences removes Markdown code fences models add despite instructions.
func stripFences(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func normalizeConfidence(raw string) Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ConfidenceHigh):
		return ConfidenceHigh
	case string(ConfidenceLow):
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// enhancedID embeds domain, timestamp, and a random suffix so enhanced ids
// never collide with deterministic ones.
func enhancedID(domain Domain, now time.Time) string {
	return fmt.Sprintf("%s-ai-%d-%04d", domain, now.UnixNano(), rand.Intn(10000))
}
