// Package resource keeps a resource's completed flag and status in step on
// every write.
package resource

import (
	"context"
	"strings"

	"learnmap/internal/domain"
	"learnmap/internal/domain/resource"
	"learnmap/internal/events"
	"learnmap/internal/infrastructure/preview"
	"learnmap/internal/repository"
)

type Store interface {
	List(ctx context.Context, userID string) ([]resource.Resource, error)
	Get(ctx context.Context, userID, id string) (resource.Resource, error)
	Create(ctx context.Context, userID string, r resource.Resource) (resource.Resource, error)
	Update(ctx context.Context, userID, id string, patch repository.Patch[resource.Resource]) (resource.Resource, error)
	Delete(ctx context.Context, userID, id string) error
}

type Previewer interface {
	Fetch(ctx context.Context, rawURL string) (preview.Preview, error)
}

type Service struct {
	store   Store
	events  events.Publisher
	preview Previewer
}

func NewService(store Store, pub events.Publisher, pv Previewer) *Service {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Service{store: store, events: pub, preview: pv}
}

func (s *Service) List(ctx context.Context, userID string) ([]resource.Resource, error) {
	return s.store.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (resource.Resource, error) {
	return s.store.Get(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, userID string, in resource.Resource) (resource.Resource, error) {
	in.ApplyDefaults()
	in.Reconcile(in.Completed)
	if err := in.Validate(); err != nil {
		return resource.Resource{}, err
	}

	created, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return resource.Resource{}, err
	}
	s.publish(ctx, events.ResourceCreated, userID, created)
	return created, nil
}

// Update merges patch, then reconciles completed and status. When the patch
// sets completed, status follows it; when it sets only status, completed
// follows status.
func (s *Service) Update(ctx context.Context, userID, id string, patch resource.Patch) (resource.Resource, error) {
	if patch.Empty() {
		return resource.Resource{}, domain.NewValidationError("", "no fields to update")
	}
	patch = trimPatch(patch)

	current, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return resource.Resource{}, err
	}
	merged := current
	patch.Apply(&merged)
	merged.Reconcile(patch.Completed != nil)
	if err := merged.Validate(); err != nil {
		return resource.Resource{}, err
	}

	if merged.Status != current.Status {
		st := merged.Status
		patch.Status = &st
	}
	if merged.Completed != current.Completed {
		c := merged.Completed
		patch.Completed = &c
	}

	updated, err := s.store.Update(ctx, userID, id, patch)
	if err != nil {
		return resource.Resource{}, err
	}
	s.publish(ctx, events.ResourceUpdated, userID, updated)
	return updated, nil
}

// Toggle flips completion.
func (s *Service) Toggle(ctx context.Context, userID, id string) (resource.Resource, error) {
	current, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return resource.Resource{}, err
	}
	done := !current.Completed
	return s.Update(ctx, userID, id, resource.Patch{Completed: &done})
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.events.Publish(ctx, events.Event{Kind: events.ResourceDeleted, UserID: userID, EntityID: id})
	return nil
}

func (s *Service) Preview(ctx context.Context, rawURL string) (preview.Preview, error) {
	if s.preview == nil {
		return preview.Preview{}, domain.ErrProvider
	}
	return s.preview.Fetch(ctx, rawURL)
}

func (s *Service) publish(ctx context.Context, kind events.Kind, userID string, r resource.Resource) {
	s.events.Publish(ctx, events.Event{Kind: kind, UserID: userID, EntityID: r.ID, Payload: r})
}

func trimPatch(p resource.Patch) resource.Patch {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if p.URL != nil {
		u := strings.TrimSpace(*p.URL)
		p.URL = &u
	}
	return p
}
