package suggest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/domain/skill"
	"learnmap/internal/infrastructure/llm"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (m *memCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func respond(body string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(body)}
}

func TestGenerativeSkillsFromEnvelope(t *testing.T) {
	p := llm.NewMockProvider(respond(`{"skills":[
		{"name":" Go ","category":"Backend","description":"Learn Go"},
		{"category":"missing name"},
		{"name":""},
		"not an object",
		{"name":"SQL","category":"Data"}
	]}`))
	g := NewGenerative(p)

	res := g.Skills(context.Background(), "become a backend engineer", []string{"Git", "Linux"})

	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, []SkillSuggestion{
		{Name: "Go", Category: "Backend", Description: "Learn Go"},
		{Name: "SQL", Category: "Data"},
	}, res.Items)

	require.Equal(t, 1, p.CallCount())
	prompt := p.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, `"become a backend engineer"`)
	assert.Contains(t, prompt, "Git, Linux")
	assert.NotNil(t, p.Calls[0].Schema)
}

func TestGenerativeAcceptsBareArrayAndFence(t *testing.T) {
	p := llm.NewMockProvider(
		respond(`[{"name":"Rust"}]`),
		respond("```json\n{\"skills\":[{\"name\":\"Zig\"}]}\n```"),
	)
	g := NewGenerative(p)

	res := g.Skills(context.Background(), "systems", nil)
	require.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, "Rust", res.Items[0].Name)

	res = g.Skills(context.Background(), "more systems", nil)
	require.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, "Zig", res.Items[0].Name)
}

func TestGenerativeDegradesToEmpty(t *testing.T) {
	cases := map[string]llm.MockResponse{
		"malformed":     respond(`{"skills": [`),
		"wrong key":     respond(`{"items":[{"name":"Go"}]}`),
		"not an array":  respond(`{"skills":"Go"}`),
		"no valid item": respond(`{"skills":[{"category":"x"}]}`),
		"plain text":    respond(`Sure! Here are some skills.`),
		"empty":         respond(``),
		"provider err":  {Err: &llm.ProviderError{Provider: "mock", StatusCode: 500}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGenerative(llm.NewMockProvider(resp))
			res := g.Skills(context.Background(), "anything", nil)

			assert.Equal(t, OutcomeEmpty, res.Outcome)
			assert.NotNil(t, res.Items)
			assert.Empty(t, res.Items)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestGenerativeTimeout(t *testing.T) {
	p := llm.NewMockProvider(llm.MockResponse{Block: true})
	g := NewGenerative(p, WithTimeout(20*time.Millisecond))

	start := time.Now()
	res := g.Skills(context.Background(), "anything", nil)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.Equal(t, "timeout", res.Reason)
}

func TestGenerativeResourcesFiltersInvalidItems(t *testing.T) {
	p := llm.NewMockProvider(respond(`{"resources":[
		{"title":"Tour of Go","url":"https://go.dev/tour","type":"Course","description":"Interactive"},
		{"title":"Bad URL","url":"not a url","type":"article"},
		{"title":"Bad type","url":"https://example.com","type":"podcast"},
		{"title":"No type","url":"https://gobyexample.com"},
		{"url":"https://example.com/untitled"}
	]}`))
	g := NewGenerative(p)

	res := g.Resources(context.Background(), skill.Skill{Name: "Go", Category: "Backend"})

	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, []ResourceSuggestion{
		{Title: "Tour of Go", URL: "https://go.dev/tour", Type: "course", Description: "Interactive"},
		{Title: "No type", URL: "https://gobyexample.com", Type: "article"},
	}, res.Items)

	prompt := p.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, `"Go"`)
	assert.Contains(t, prompt, `"Backend"`)
}

func TestGenerativeCachesGeneratedResults(t *testing.T) {
	cache := newMemCache()
	p := llm.NewMockProvider(respond(`{"skills":[{"name":"Go"}]}`))
	g := NewGenerative(p, WithCache(cache, time.Minute))

	first := g.Skills(context.Background(), "Backend  Engineering", nil)
	second := g.Skills(context.Background(), "backend engineering", nil)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.CallCount())
	require.Len(t, cache.ttls, 1)
	for _, ttl := range cache.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestGenerativeDoesNotCacheEmpty(t *testing.T) {
	cache := newMemCache()
	p := llm.NewMockProvider(respond(`{"skills":[]}`), respond(`{"skills":[{"name":"Go"}]}`))
	g := NewGenerative(p, WithCache(cache, time.Minute))

	assert.Equal(t, OutcomeEmpty, g.Skills(context.Background(), "goal", nil).Outcome)
	assert.Equal(t, OutcomeGenerated, g.Skills(context.Background(), "goal", nil).Outcome)
	assert.Equal(t, 2, p.CallCount())
}

func TestSelect(t *testing.T) {
	assert.Equal(t, "keyword", Select(nil).Name())
	assert.Equal(t, "generative", Select(llm.NewMockProvider()).Name())
}

func TestCacheKeyNormalizes(t *testing.T) {
	a := cacheKey("skills", "m", "  Web   Development ", []string{"Go", ""})
	b := cacheKey("skills", "m", "web development", []string{"go"})
	c := cacheKey("skills", "other-model", "web development", []string{"go"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "suggest:skills:")
}
