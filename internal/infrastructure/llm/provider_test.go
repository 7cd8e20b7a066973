package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/config"
	"learnmap/internal/domain"
)

var testSchema = &Schema{
	Name: "test-skill-list",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"skills"},
		"properties": map[string]any{
			"skills": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object", "required": []string{"name"}},
			},
		},
	},
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := openai.DefaultConfig("test-key")
	c.BaseURL = server.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(c), model: "gpt-4o-mini"}
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func TestOpenAIProviderHappyPath(t *testing.T) {
	var got map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `{"skills":[{"name":"Go"}]}`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	})

	req := UserPrompt("You are a career coach.", "Suggest skills.")
	req.Schema = testSchema
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.JSONEq(t, `{"skills":[{"name":"Go"}]}`, string(resp.Content))
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, "end", resp.StopReason)

	format, _ := got["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	msgs, _ := got["messages"].([]any)
	require.Len(t, msgs, 2)
}

func TestOpenAIProviderServerErrorIsProviderError(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		})
	})

	_, err := p.Generate(context.Background(), UserPrompt("", "hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.NotErrorIs(t, err, domain.ErrTimeout)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)
}

func TestAnthropicProviderPutsSchemaInSystemPrompt(t *testing.T) {
	var got map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": `{"skills":[]}`}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	})

	req := UserPrompt("You are a career coach.", "Suggest skills.")
	req.Schema = testSchema
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	system, _ := got["system"].([]any)
	require.Len(t, system, 1)
	text := system[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "You are a career coach.")
	assert.Contains(t, text, `"skills"`)
}

func TestAnthropicProviderTimeout(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, UserPrompt("", "hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(testSchema, json.RawMessage(`{"skills":[{"name":"Go"}]}`)))
	require.NoError(t, Validate(nil, json.RawMessage(`not json`)))

	err := Validate(testSchema, json.RawMessage(`{"skills":[{"category":"x"}]}`))
	var ire *InvalidResponseError
	require.ErrorAs(t, err, &ire)
	assert.ErrorIs(t, err, domain.ErrProvider)

	err = Validate(testSchema, json.RawMessage(`{"skills":`))
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestMockProviderFIFO(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`)},
		MockResponse{Err: providerError("mock", 503, nil)},
	)
	ctx := context.Background()

	resp, err := m.Generate(ctx, UserPrompt("", "one"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))

	_, err = m.Generate(ctx, UserPrompt("", "two"))
	assert.ErrorIs(t, err, domain.ErrProvider)

	_, err = m.Generate(ctx, UserPrompt("", "three"))
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "two", m.Calls[1].Messages[0].Content)

	m.AddResponse(MockResponse{Content: json.RawMessage(`[]`)})
	resp, err = m.Generate(ctx, UserPrompt("", "four"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(resp.Content))
}

func TestNewFactory(t *testing.T) {
	ctx := context.Background()

	p, err := New(ctx, config.LLMConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = New(ctx, config.LLMConfig{Provider: "openai", OpenAIAPIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o", p.ModelID())

	_, err = New(ctx, config.LLMConfig{Provider: "anthropic"})
	assert.ErrorContains(t, err, "API key is required")

	_, err = New(ctx, config.LLMConfig{Provider: "cohere"})
	assert.Error(t, err)
}

func TestBuildGeminiSchema(t *testing.T) {
	s := buildGeminiSchema(testSchema.Definition)
	assert.Equal(t, []string{"skills"}, s.Required)
	require.Contains(t, s.Properties, "skills")
	assert.NotNil(t, s.Properties["skills"].Items)
	assert.Equal(t, []string{"name"}, s.Properties["skills"].Items.Required)
}
