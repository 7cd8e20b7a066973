package resource

import (
	"slices"
	"strings"
	"time"

	"learnmap/internal/domain"
)

type Type string

const (
	TypeArticle Type = "article"
	TypeVideo   Type = "video"
	TypeCourse  Type = "course"
	TypeProject Type = "project"
	TypeOther   Type = "other"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Resource struct {
	domain.Record

	Title                string     `json:"title"`
	URL                  string     `json:"url"`
	Type                 Type       `json:"type"`
	Description          string     `json:"description,omitempty"`
	Completed            bool       `json:"completed"`
	Status               Status     `json:"status"`
	Priority             Priority   `json:"priority"`
	Tags                 []string   `json:"tags"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes,omitempty"`
	ProgressPercentage   *int       `json:"progress_percentage,omitempty"`
	LastAccessedAt       *time.Time `json:"last_accessed_at,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title                *string    `json:"title"`
	URL                  *string    `json:"url"`
	Type                 *Type      `json:"type"`
	Description          *string    `json:"description"`
	Completed            *bool      `json:"completed"`
	Status               *Status    `json:"status"`
	Priority             *Priority  `json:"priority"`
	Tags                 *[]string  `json:"tags"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes"`
	ProgressPercentage   *int       `json:"progress_percentage"`
	LastAccessedAt       *time.Time `json:"last_accessed_at"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.URL == nil && p.Type == nil && p.Description == nil &&
		p.Completed == nil && p.Status == nil && p.Priority == nil && p.Tags == nil &&
		p.EstimatedTimeMinutes == nil && p.ProgressPercentage == nil && p.LastAccessedAt == nil
}

func (p Patch) Apply(r *Resource) {
	if r == nil {
		return
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Completed != nil {
		r.Completed = *p.Completed
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Tags != nil {
		r.Tags = slices.Clone(*p.Tags)
	}
	if p.EstimatedTimeMinutes != nil {
		v := *p.EstimatedTimeMinutes
		r.EstimatedTimeMinutes = &v
	}
	if p.ProgressPercentage != nil {
		v := *p.ProgressPercentage
		r.ProgressPercentage = &v
	}
	if p.LastAccessedAt != nil {
		v := p.LastAccessedAt.UTC()
		r.LastAccessedAt = &v
	}
}

// ApplyDefaults fills the values a new resource gets when the caller omits them.
func (r *Resource) ApplyDefaults() {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	if r.Type == "" {
		r.Type = TypeArticle
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Status == "" {
		if r.Completed {
			r.Status = StatusCompleted
		} else {
			r.Status = StatusNotStarted
		}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
}

// Reconcile keeps completed and status in agreement. When both disagree the
// field named by completedChanged wins.
func (r *Resource) Reconcile(completedChanged bool) {
	if completedChanged {
		switch {
		case r.Completed:
			r.Status = StatusCompleted
		case r.Status == StatusCompleted:
			r.Status = StatusInProgress
		}
		return
	}
	r.Completed = r.Status == StatusCompleted
}

func (r Resource) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return domain.NewValidationError("title", "must not be empty")
	}
	if !IsValidURL(r.URL) {
		return domain.NewValidationError("url", "must be an absolute URL")
	}
	if !IsValidResourceType(string(r.Type)) {
		return domain.NewValidationError("type", "must be one of article, video, course, project, other")
	}
	if !IsValidStatus(string(r.Status)) {
		return domain.NewValidationError("status", "must be one of not_started, in_progress, completed")
	}
	if !IsValidPriority(string(r.Priority)) {
		return domain.NewValidationError("priority", "must be one of low, medium, high")
	}
	if r.Completed != (r.Status == StatusCompleted) {
		return domain.NewValidationError("completed", "must match status")
	}
	if r.EstimatedTimeMinutes != nil && *r.EstimatedTimeMinutes < 0 {
		return domain.NewValidationError("estimated_time_minutes", "must not be negative")
	}
	if r.ProgressPercentage != nil && (*r.ProgressPercentage < 0 || *r.ProgressPercentage > 100) {
		return domain.NewValidationError("progress_percentage", "must be between 0 and 100")
	}
	return nil
}

// SameTags compares tags as sets.
func SameTags(a, b []string) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(slices.Compact(x), slices.Compact(y))
}
