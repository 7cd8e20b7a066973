// Package suggest turns a learning goal into skill suggestions and a skill
// into resource suggestions. Strategies never fail: provider trouble
// degrades to an empty result that says why.
package suggest

import (
	"context"

	"learnmap/internal/domain/skill"
)

type Outcome string

const (
	// OutcomeMatched means at least one keyword topic matched the goal.
	OutcomeMatched Outcome = "matched"
	// OutcomeFallback is the keyword strategy's general-purpose list.
	OutcomeFallback Outcome = "fallback"
	// OutcomeGenerated carries items produced by a language model.
	OutcomeGenerated Outcome = "generated"
	// OutcomeEmpty is a valid, non-error result with no items.
	OutcomeEmpty Outcome = "empty"
)

type SkillSuggestion struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type ResourceSuggestion struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Result is an ordered, finite suggestion list tagged with how it was made.
// Items is never nil.
type Result[T any] struct {
	Items   []T     `json:"items"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

func emptyResult[T any](reason string) Result[T] {
	return Result[T]{Items: []T{}, Outcome: OutcomeEmpty, Reason: reason}
}

type Strategy interface {
	Name() string
	Skills(ctx context.Context, goal string, existing []string) Result[SkillSuggestion]
	Resources(ctx context.Context, s skill.Skill) Result[ResourceSuggestion]
}
