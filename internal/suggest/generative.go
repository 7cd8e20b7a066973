package suggest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"learnmap/internal/domain"
	"learnmap/internal/domain/resource"
	"learnmap/internal/domain/skill"
	"learnmap/internal/infrastructure/llm"
	"learnmap/internal/pkg/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 1024
	defaultCacheTTL  = 10 * time.Minute
	maxItems         = 20
)

// Cache stores generated results. A nil Cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Generative asks a language model for suggestions and keeps only the items
// that survive validation.
type Generative struct {
	provider  llm.Provider
	timeout   time.Duration
	maxTokens int
	cache     Cache
	cacheTTL  time.Duration
}

type Option func(*Generative)

func WithTimeout(d time.Duration) Option {
	return func(g *Generative) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(g *Generative) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

func WithCache(c Cache, ttl time.Duration) Option {
	return func(g *Generative) {
		g.cache = c
		if ttl > 0 {
			g.cacheTTL = ttl
		}
	}
}

func NewGenerative(p llm.Provider, opts ...Option) *Generative {
	g := &Generative{
		provider:  p,
		timeout:   defaultTimeout,
		maxTokens: defaultMaxTokens,
		cacheTTL:  defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Select picks the generative strategy when a provider is configured and
// the keyword table otherwise.
func Select(p llm.Provider, opts ...Option) Strategy {
	if p == nil {
		return Keyword{}
	}
	return NewGenerative(p, opts...)
}

func (g *Generative) Name() string { return "generative" }

func (g *Generative) Skills(ctx context.Context, goal string, existing []string) Result[SkillSuggestion] {
	key := cacheKey("skills", g.provider.ModelID(), goal, existing)
	if res, ok := cached[SkillSuggestion](ctx, g.cache, key); ok {
		return res
	}

	raw, reason := g.generate(ctx, skillPrompt(goal, existing), skillEnvelope)
	if reason != "" {
		return emptyResult[SkillSuggestion](reason)
	}

	items, err := decodeItems(raw, "skills")
	if err != nil {
		return emptyResult[SkillSuggestion]("invalid payload: " + err.Error())
	}

	out := make([]SkillSuggestion, 0, len(items))
	for _, it := range items {
		if llm.ValidateValue(skillItemSchema, it.value) != nil {
			continue
		}
		var s SkillSuggestion
		if json.Unmarshal(it.raw, &s) != nil {
			continue
		}
		s.Name = strings.TrimSpace(s.Name)
		s.Category = strings.TrimSpace(s.Category)
		s.Description = strings.TrimSpace(s.Description)
		if s.Name == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxItems {
			break
		}
	}
	if len(out) == 0 {
		return emptyResult[SkillSuggestion]("no valid items in payload")
	}

	res := Result[SkillSuggestion]{Items: out, Outcome: OutcomeGenerated}
	store(ctx, g.cache, key, res, g.cacheTTL)
	return res
}

func (g *Generative) Resources(ctx context.Context, s skill.Skill) Result[ResourceSuggestion] {
	key := cacheKey("resources", g.provider.ModelID(), s.Name, []string{s.Category})
	if res, ok := cached[ResourceSuggestion](ctx, g.cache, key); ok {
		return res
	}

	raw, reason := g.generate(ctx, resourcePrompt(s), resourceEnvelope)
	if reason != "" {
		return emptyResult[ResourceSuggestion](reason)
	}

	items, err := decodeItems(raw, "resources")
	if err != nil {
		return emptyResult[ResourceSuggestion]("invalid payload: " + err.Error())
	}

	out := make([]ResourceSuggestion, 0, len(items))
	for _, it := range items {
		if llm.ValidateValue(resourceItemSchema, it.value) != nil {
			continue
		}
		var r ResourceSuggestion
		if json.Unmarshal(it.raw, &r) != nil {
			continue
		}
		r.Title = strings.TrimSpace(r.Title)
		r.URL = strings.TrimSpace(r.URL)
		r.Type = strings.ToLower(strings.TrimSpace(r.Type))
		r.Description = strings.TrimSpace(r.Description)
		if r.Type == "" {
			r.Type = string(resource.TypeArticle)
		}
		if r.Title == "" || !resource.IsValidURL(r.URL) || !resource.IsValidResourceType(r.Type) {
			continue
		}
		out = append(out, r)
		if len(out) == maxItems {
			break
		}
	}
	if len(out) == 0 {
		return emptyResult[ResourceSuggestion]("no valid items in payload")
	}

	res := Result[ResourceSuggestion]{Items: out, Outcome: OutcomeGenerated}
	store(ctx, g.cache, key, res, g.cacheTTL)
	return res
}

// generate runs one bounded provider call. A non-empty reason means the call
// produced nothing usable.
func (g *Generative) generate(ctx context.Context, prompt string, schema *llm.Schema) (json.RawMessage, string) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := llm.UserPrompt(systemPrompt, prompt)
	req.Schema = schema
	req.MaxTokens = g.maxTokens

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		reason := "provider error"
		if errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		logger.Component(ctx, "suggest").WithError(err).WithField("reason", reason).Warn("generation failed")
		return nil, reason
	}
	if resp == nil || len(bytes.TrimSpace(resp.Content)) == 0 {
		return nil, "empty response"
	}
	return resp.Content, ""
}

type item struct {
	raw   json.RawMessage
	value any
}

// decodeItems accepts {"<key>": [...]} or a bare array, optionally wrapped
// in a markdown code fence.
func decodeItems(raw json.RawMessage, key string) ([]item, error) {
	body := bytes.TrimSpace(stripFence(raw))
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	var list []json.RawMessage
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
	case '{':
		var env map[string]json.RawMessage
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, err
		}
		arr, ok := env[key]
		if !ok {
			return nil, fmt.Errorf("missing %q array", key)
		}
		if err := json.Unmarshal(arr, &list); err != nil {
			return nil, fmt.Errorf("%q is not an array", key)
		}
	default:
		return nil, errors.New("not a JSON object or array")
	}

	out := make([]item, 0, len(list))
	for _, r := range list {
		var v any
		if json.Unmarshal(r, &v) != nil {
			continue
		}
		out = append(out, item{raw: r, value: v})
	}
	return out, nil
}

func stripFence(raw []byte) []byte {
	s := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(s, []byte("```")) {
		return s
	}
	s = s[3:]
	if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
	return s
}

type cacheKeyInput struct {
	Kind     string   `json:"kind"`
	Model    string   `json:"model"`
	Subject  string   `json:"subject"`
	Existing []string `json:"existing"`
}

func normalizeValue(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func cacheKey(kind, model, subject string, existing []string) string {
	in := cacheKeyInput{Kind: kind, Model: model, Subject: normalizeValue(subject)}
	for _, e := range existing {
		if e = normalizeValue(e); e != "" {
			in.Existing = append(in.Existing, e)
		}
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "suggest:" + kind + ":" + hex.EncodeToString(sum[:])
}

func cached[T any](ctx context.Context, c Cache, key string) (Result[T], bool) {
	if c == nil {
		return Result[T]{}, false
	}
	var res Result[T]
	ok, err := c.GetJSON(ctx, key, &res)
	if err != nil || !ok || res.Outcome != OutcomeGenerated || len(res.Items) == 0 {
		return Result[T]{}, false
	}
	return res, true
}

func store[T any](ctx context.Context, c Cache, key string, res Result[T], ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.SetJSON(ctx, key, res, ttl); err != nil {
		logger.Component(ctx, "suggest").WithError(err).Debug("cache store failed")
	}
}
