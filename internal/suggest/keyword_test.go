package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/domain/skill"
)

func names(items []SkillSuggestion) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Name
	}
	return out
}

func TestKeywordWebDevelopment(t *testing.T) {
	res := Keyword{}.Skills(context.Background(), "I want to learn web development", nil)

	assert.Equal(t, OutcomeMatched, res.Outcome)
	assert.Subset(t, names(res.Items), []string{"HTML & CSS", "JavaScript", "React", "Node.js"})
}

func TestKeywordFallback(t *testing.T) {
	res := Keyword{}.Skills(context.Background(), "xyzzy nonsense", nil)

	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Equal(t, []string{"Problem Solving", "Communication", "Time Management"}, names(res.Items))
}

func TestKeywordIsCaseInsensitiveAndKeepsTableOrder(t *testing.T) {
	res := Keyword{}.Skills(context.Background(), "Cloud Computing after DATA SCIENCE", nil)

	require.Len(t, res.Items, 8)
	assert.Equal(t, "Python", res.Items[0].Name)
	assert.Equal(t, "AWS", res.Items[4].Name)
}

func TestKeywordFallbackIsNotShared(t *testing.T) {
	res := Keyword{}.Skills(context.Background(), "", nil)
	res.Items[0].Name = "mutated"

	again := Keyword{}.Skills(context.Background(), "", nil)
	assert.Equal(t, "Problem Solving", again.Items[0].Name)
}

func TestKeywordResourcesIsEmpty(t *testing.T) {
	res := Keyword{}.Resources(context.Background(), skill.Skill{Name: "Go"})
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{"web development", "data science", "mobile development", "cloud computing"}, Topics())
}
