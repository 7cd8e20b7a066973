package seeder

import (
	"context"
	"errors"

	"learnmap/internal/domain/resource"
)

var starterResources = []resource.Resource{
	{Title: "MDN: HTML basics", URL: "https://developer.mozilla.org/en-US/docs/Learn/HTML", Type: resource.TypeArticle, Completed: true, Tags: []string{"html"}},
	{Title: "JavaScript.info", URL: "https://javascript.info", Type: resource.TypeCourse, Status: resource.StatusInProgress, Priority: resource.PriorityHigh, Tags: []string{"javascript"}},
	{Title: "React quick start", URL: "https://react.dev/learn", Type: resource.TypeArticle, Tags: []string{"react"}},
}

type ResourceSeeder struct{}

func (ResourceSeeder) Name() string { return "resources" }

func (ResourceSeeder) Run(ctx context.Context, st *State) error {
	if st.Resources == nil || st.UserID == "" {
		return errors.New("resources need a user")
	}

	existing, err := st.Resources.List(ctx, st.UserID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, r := range starterResources {
		r.Tags = append([]string(nil), r.Tags...)
		if _, err := st.Resources.Create(ctx, st.UserID, r); err != nil {
			return err
		}
	}
	return nil
}
