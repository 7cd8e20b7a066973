package skill

import (
	"slices"
	"strings"

	"learnmap/internal/domain"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

type Skill struct {
	domain.Record

	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Progress     int      `json:"progress"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name         *string   `json:"name"`
	Category     *string   `json:"category"`
	Progress     *int      `json:"progress"`
	Description  *string   `json:"description"`
	Dependencies *[]string `json:"dependencies"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Progress == nil && p.Description == nil && p.Dependencies == nil
}

func (p Patch) Apply(s *Skill) {
	if s == nil {
		return
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Progress != nil {
		s.Progress = *p.Progress
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Dependencies != nil {
		s.Dependencies = slices.Clone(*p.Dependencies)
	}
}

// WithoutDependency is a patch that drops one id from whatever dependency
// list is stored, leaving every other field alone.
type WithoutDependency string

func (w WithoutDependency) Apply(s *Skill) {
	if s == nil {
		return
	}
	s.Dependencies = slices.DeleteFunc(slices.Clone(s.Dependencies), func(d string) bool {
		return d == string(w)
	})
}

// Normalize trims text fields and drops blank or repeated dependency ids.
func (s *Skill) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	s.Description = strings.TrimSpace(s.Description)

	deps := make([]string, 0, len(s.Dependencies))
	for _, d := range s.Dependencies {
		d = strings.TrimSpace(d)
		if d == "" || slices.Contains(deps, d) {
			continue
		}
		deps = append(deps, d)
	}
	s.Dependencies = deps
}

func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return domain.NewValidationError("name", "must not be empty")
	}
	if s.Progress < MinProgress || s.Progress > MaxProgress {
		return domain.NewValidationError("progress", "must be between 0 and 100")
	}
	for _, d := range s.Dependencies {
		if strings.TrimSpace(d) == "" {
			return domain.NewValidationError("dependencies", "must not contain blank ids")
		}
	}
	return nil
}

func (s Skill) Completed() bool {
	return s.Progress >= MaxProgress
}
