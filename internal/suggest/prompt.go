package suggest

import (
	"fmt"
	"strings"

	"learnmap/internal/domain/skill"
	"learnmap/internal/infrastructure/llm"
)

const systemPrompt = "You help people plan what to learn next. Answer with JSON only."

func skillPrompt(goal string, existing []string) string {
	current := "none"
	if len(existing) > 0 {
		current = strings.Join(existing, ", ")
	}
	return fmt.Sprintf(
		"Given the goal %q and current skills: %s, suggest a learning path with specific skills to acquire. "+
			`Format the response as a JSON object with a "skills" array of skills with name, category, and description.`,
		goal, current,
	)
}

func resourcePrompt(s skill.Skill) string {
	return fmt.Sprintf(
		"Suggest learning resources for the skill %q in the category %q. "+
			`Format the response as a JSON object with a "resources" array of resources with title, url, `+
			"type (article/video/course/project), and description.",
		s.Name, s.Category,
	)
}

var skillItemSchema = &llm.Schema{
	Name: "skill-suggestion",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "minLength": 1},
			"category":    map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
	},
}

var resourceItemSchema = &llm.Schema{
	Name: "resource-suggestion",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"title", "url"},
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"url":         map[string]any{"type": "string", "minLength": 1},
			"type":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
	},
}

func envelopeSchema(name, key string, item *llm.Schema) *llm.Schema {
	return &llm.Schema{
		Name: name,
		Definition: map[string]any{
			"type":     "object",
			"required": []string{key},
			"properties": map[string]any{
				key: map[string]any{"type": "array", "items": item.Definition},
			},
		},
	}
}

var (
	skillEnvelope    = envelopeSchema("skill-suggestions", "skills", skillItemSchema)
	resourceEnvelope = envelopeSchema("resource-suggestions", "resources", resourceItemSchema)
)
