package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/domain"
)

func TestIsValidURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com/path", true},
		{"http://localhost:8080", true},
		{"https://go.dev/doc/effective_go#names", true},
		{"not a url", false},
		{"", false},
		{"example.com", false},
		{"/relative/path", false},
		{"http://", false},
		{"://missing-scheme", false},
		{"http://[::1", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsValidURL(tc.in), "IsValidURL(%q)", tc.in)
	}
}

func TestEnumPredicatesAreCaseSensitive(t *testing.T) {
	for _, v := range []string{"article", "video", "course", "project", "other"} {
		assert.True(t, IsValidResourceType(v), v)
	}
	assert.False(t, IsValidResourceType("Article"))
	assert.False(t, IsValidResourceType("podcast"))

	assert.True(t, IsValidStatus("in_progress"))
	assert.False(t, IsValidStatus("done"))

	assert.True(t, IsValidPriority("high"))
	assert.False(t, IsValidPriority("HIGH"))
	assert.False(t, IsValidPriority(""))
}

func TestApplyDefaults(t *testing.T) {
	r := Resource{Title: "  Go tour ", URL: " https://go.dev/tour "}
	r.ApplyDefaults()

	assert.Equal(t, "Go tour", r.Title)
	assert.Equal(t, "https://go.dev/tour", r.URL)
	assert.Equal(t, TypeArticle, r.Type)
	assert.Equal(t, PriorityMedium, r.Priority)
	assert.Equal(t, StatusNotStarted, r.Status)
	assert.NotNil(t, r.Tags)
	require.NoError(t, r.Validate())

	done := Resource{Title: "x", URL: "https://x.dev", Completed: true}
	done.ApplyDefaults()
	assert.Equal(t, StatusCompleted, done.Status)
}

func TestReconcile(t *testing.T) {
	r := Resource{Completed: true, Status: StatusInProgress}
	r.Reconcile(true)
	assert.Equal(t, StatusCompleted, r.Status)

	r = Resource{Completed: false, Status: StatusCompleted}
	r.Reconcile(true)
	assert.Equal(t, StatusInProgress, r.Status)

	r = Resource{Completed: false, Status: StatusNotStarted}
	r.Reconcile(true)
	assert.Equal(t, StatusNotStarted, r.Status)

	r = Resource{Completed: true, Status: StatusInProgress}
	r.Reconcile(false)
	assert.False(t, r.Completed)

	r = Resource{Status: StatusCompleted}
	r.Reconcile(false)
	assert.True(t, r.Completed)
}

func TestValidateNamesField(t *testing.T) {
	base := func() Resource {
		r := Resource{Title: "Docs", URL: "https://go.dev/doc"}
		r.ApplyDefaults()
		return r
	}
	neg, over := -1, 101

	cases := map[string]func(*Resource){
		"title":                  func(r *Resource) { r.Title = "  " },
		"url":                    func(r *Resource) { r.URL = "not a url" },
		"type":                   func(r *Resource) { r.Type = "podcast" },
		"status":                 func(r *Resource) { r.Status = "paused" },
		"priority":               func(r *Resource) { r.Priority = "urgent" },
		"completed":              func(r *Resource) { r.Completed = true },
		"estimated_time_minutes": func(r *Resource) { r.EstimatedTimeMinutes = &neg },
		"progress_percentage":    func(r *Resource) { r.ProgressPercentage = &over },
	}
	for field, mutate := range cases {
		r := base()
		mutate(&r)
		err := r.Validate()
		require.ErrorIs(t, err, domain.ErrValidation, field)

		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, field, ve.Field)
	}
}

func TestPatchApplyTouchesOnlySetFields(t *testing.T) {
	r := Resource{Title: "a", URL: "https://a.dev", Tags: []string{"go"}}
	r.ApplyDefaults()
	before := r

	done := true
	Patch{Completed: &done}.Apply(&r)

	assert.True(t, r.Completed)
	r.Completed = before.Completed
	assert.Equal(t, before, r)
	assert.True(t, Patch{}.Empty())
	assert.False(t, Patch{Completed: &done}.Empty())
}

func TestSameTags(t *testing.T) {
	assert.True(t, SameTags([]string{"go", "web"}, []string{"web", "go"}))
	assert.True(t, SameTags([]string{"go", "go"}, []string{"go"}))
	assert.False(t, SameTags([]string{"go"}, []string{"rust"}))
	assert.True(t, SameTags(nil, []string{}))
}
