// Package llm adapts hosted language models to the single call the
// suggestion service needs: prompt in, JSON text out.
package llm

import (
	"context"
	"encoding/json"
)

type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// Name identifies the backend in logs and metrics, e.g. "openai".
	Name() string
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message
	// Schema asks the backend for JSON of this shape where it supports
	// native structured output. Callers still validate what comes back.
	Schema    *Schema
	MaxTokens int
	// Temperature in [0, 1]; zero leaves the backend default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt is the common single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// resolveModel maps a short alias to a provider model id. Unknown names pass
// through so full ids can be configured directly.
func resolveModel(name string, models map[string]string, fallback string) string {
	if name == "" {
		return fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
