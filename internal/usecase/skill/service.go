// Package skill runs skill writes through the dependency graph before they
// reach storage, so the stored graph stays acyclic.
package skill

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"learnmap/internal/domain"
	"learnmap/internal/domain/skill"
	"learnmap/internal/domain/skillgraph"
	"learnmap/internal/events"
	"learnmap/internal/metrics"
	"learnmap/internal/pkg/logger"
	"learnmap/internal/repository"
)

type Store interface {
	List(ctx context.Context, userID string) ([]skill.Skill, error)
	Get(ctx context.Context, userID, id string) (skill.Skill, error)
	Create(ctx context.Context, userID string, s skill.Skill) (skill.Skill, error)
	Update(ctx context.Context, userID, id string, patch repository.Patch[skill.Skill]) (skill.Skill, error)
	Delete(ctx context.Context, userID, id string) error
	Apply(ctx context.Context, userID string, cs repository.Changeset[skill.Skill]) ([]skill.Skill, error)
}

type Service struct {
	store   Store
	events  events.Publisher
	metrics *metrics.Metrics
}

func NewService(store Store, pub events.Publisher, m *metrics.Metrics) *Service {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Service{store: store, events: pub, metrics: m}
}

func (s *Service) List(ctx context.Context, userID string) ([]skill.Skill, error) {
	return s.store.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (skill.Skill, error) {
	return s.store.Get(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, userID string, in skill.Skill) (skill.Skill, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return skill.Skill{}, err
	}

	g, err := s.graph(ctx, userID)
	if err != nil {
		return skill.Skill{}, err
	}
	in.ID = repository.NewID()
	if err := g.AddSkill(in); err != nil {
		s.rejected(ctx, userID, "create", err)
		return skill.Skill{}, err
	}

	created, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return skill.Skill{}, err
	}
	s.publish(ctx, events.SkillCreated, userID, created.ID, created)
	return created, nil
}

// Update merges patch into the stored skill. A new dependency list is checked
// against the graph as a whole and either applied entirely or rejected.
func (s *Service) Update(ctx context.Context, userID, id string, patch skill.Patch) (skill.Skill, error) {
	if patch.Empty() {
		return skill.Skill{}, domain.NewValidationError("", "no fields to update")
	}
	patch = normalizePatch(patch)

	current, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return skill.Skill{}, err
	}
	merged := current
	merged.Dependencies = slices.Clone(current.Dependencies)
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return skill.Skill{}, err
	}

	if patch.Dependencies != nil {
		g, err := s.graph(ctx, userID)
		if err != nil {
			return skill.Skill{}, err
		}
		if err := g.SetDependencies(id, *patch.Dependencies); err != nil {
			s.rejected(ctx, userID, "update", err)
			return skill.Skill{}, err
		}
	}

	updated, err := s.store.Update(ctx, userID, id, patch)
	if err != nil {
		return skill.Skill{}, err
	}
	s.publish(ctx, events.SkillUpdated, userID, updated.ID, updated)
	return updated, nil
}

// Delete removes the skill and prunes it from every dependency list in one
// transaction. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	g, err := s.graph(ctx, userID)
	if err != nil {
		return err
	}
	if !g.Has(id) {
		return s.store.Delete(ctx, userID, id)
	}

	pruned, err := g.RemoveSkill(id)
	if err != nil {
		return err
	}
	cs := repository.Changeset[skill.Skill]{Delete: []string{id}}
	for _, pid := range pruned {
		cs.Patch = append(cs.Patch, repository.Change[skill.Skill]{ID: pid, Patch: skill.WithoutDependency(id)})
	}
	if _, err := s.store.Apply(ctx, userID, cs); err != nil {
		return err
	}

	logFor(ctx, userID).WithFields(logrus.Fields{"skill_id": id, "pruned": len(pruned)}).Debug("skill deleted")
	s.publish(ctx, events.SkillDeleted, userID, id, map[string]any{"pruned": pruned})
	return nil
}

func (s *Service) AddDependency(ctx context.Context, userID, skillID, dependsOnID string) (skill.Skill, error) {
	dependsOnID = strings.TrimSpace(dependsOnID)
	if dependsOnID == "" {
		return skill.Skill{}, domain.NewValidationError("depends_on", "must not be empty")
	}

	g, err := s.graph(ctx, userID)
	if err != nil {
		return skill.Skill{}, err
	}
	changed, err := g.AddDependency(skillID, dependsOnID)
	if err != nil {
		s.rejected(ctx, userID, "add_dependency", err)
		return skill.Skill{}, err
	}
	sk, _ := g.Skill(skillID)
	if !changed {
		return sk, nil
	}

	updated, err := s.store.Update(ctx, userID, skillID, skill.Patch{Dependencies: &sk.Dependencies})
	if err != nil {
		return skill.Skill{}, err
	}
	s.publish(ctx, events.DependencyAdded, userID, skillID, map[string]string{"depends_on": dependsOnID})
	return updated, nil
}

func (s *Service) RemoveDependency(ctx context.Context, userID, skillID, dependsOnID string) (skill.Skill, error) {
	g, err := s.graph(ctx, userID)
	if err != nil {
		return skill.Skill{}, err
	}
	if !g.Has(skillID) {
		return skill.Skill{}, domain.ErrNotFound
	}
	if !g.RemoveDependency(skillID, dependsOnID) {
		sk, _ := g.Skill(skillID)
		return sk, nil
	}

	sk, _ := g.Skill(skillID)
	updated, err := s.store.Update(ctx, userID, skillID, skill.Patch{Dependencies: &sk.Dependencies})
	if err != nil {
		return skill.Skill{}, err
	}
	s.publish(ctx, events.DependencyRemoved, userID, skillID, map[string]string{"depends_on": dependsOnID})
	return updated, nil
}

// Path returns the user's skills in learning order: prerequisites first,
// otherwise oldest first.
func (s *Service) Path(ctx context.Context, userID string) ([]skill.Skill, error) {
	g, err := s.graph(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]skill.Skill, 0, g.Len())
	for id, err := range g.TopologicalOrder() {
		if err != nil {
			return nil, err
		}
		sk, _ := g.Skill(id)
		out = append(out, sk)
	}
	return out, nil
}

// graph loads the user's skills oldest first, which is the order ties are
// broken in.
func (s *Service) graph(ctx context.Context, userID string) (*skillgraph.Graph, error) {
	list, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return skillgraph.New(list), nil
}

func (s *Service) publish(ctx context.Context, kind events.Kind, userID, id string, payload any) {
	s.events.Publish(ctx, events.Event{Kind: kind, UserID: userID, EntityID: id, Payload: payload})
}

func (s *Service) rejected(ctx context.Context, userID, op string, err error) {
	if errors.Is(err, domain.ErrCycle) {
		s.metrics.CycleRejected(op)
		logFor(ctx, userID).WithError(err).WithField("op", op).Info("dependency cycle rejected")
	}
}

func normalizePatch(p skill.Patch) skill.Patch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	p.Name = trim(p.Name)
	p.Category = trim(p.Category)
	p.Description = trim(p.Description)
	if p.Dependencies != nil {
		tmp := skill.Skill{Dependencies: *p.Dependencies}
		tmp.Normalize()
		p.Dependencies = &tmp.Dependencies
	}
	return p
}

func logFor(ctx context.Context, userID string) *logrus.Entry {
	return logger.Component(ctx, "skills").WithField("user_id", userID)
}
