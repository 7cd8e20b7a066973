package skill

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/database/dbtest"
	"learnmap/internal/domain"
	"learnmap/internal/domain/skill"
	"learnmap/internal/events"
	"learnmap/internal/metrics"
	"learnmap/internal/repository"
)

const user = "user-1"

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func newService(t *testing.T) (*Service, *recorder, *metrics.Metrics) {
	t.Helper()
	rec := &recorder{}
	m := metrics.New(prometheus.NewRegistry())
	store := repository.NewSkillGateway(dbtest.Open(t), time.Second)
	return NewService(store, rec, m), rec, m
}

func create(t *testing.T, s *Service, name string, deps ...string) skill.Skill {
	t.Helper()
	sk, err := s.Create(context.Background(), user, skill.Skill{Name: name, Category: "test", Dependencies: deps})
	require.NoError(t, err)
	return sk
}

func ids(list []skill.Skill) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestCreateValidatesAndPublishes(t *testing.T) {
	s, rec, _ := newService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, user, skill.Skill{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Create(ctx, user, skill.Skill{Name: "Go", Progress: 101})
	assert.ErrorIs(t, err, domain.ErrValidation)

	sk := create(t, s, "  Go  ")
	assert.Equal(t, "Go", sk.Name)
	assert.NotEmpty(t, sk.ID)
	assert.Equal(t, []string{}, sk.Dependencies)
	assert.Equal(t, []events.Kind{events.SkillCreated}, rec.kinds())
}

func TestAddDependencyOrdersPath(t *testing.T) {
	s, rec, _ := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")
	b := create(t, s, "B")

	updated, err := s.AddDependency(ctx, user, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, updated.Dependencies)

	path, err := s.Path(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, ids(path))
	assert.Contains(t, rec.kinds(), events.DependencyAdded)
}

func TestAddDependencyRejectsCycles(t *testing.T) {
	s, _, m := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")
	b := create(t, s, "B", a.ID)
	c := create(t, s, "C", b.ID)

	_, err := s.AddDependency(ctx, user, a.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	_, err = s.AddDependency(ctx, user, a.ID, c.ID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	stored, err := s.Get(ctx, user, a.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Dependencies)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GraphRejections.WithLabelValues("add_dependency")))
}

func TestAddDependencyIsIdempotent(t *testing.T) {
	s, rec, _ := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")
	b := create(t, s, "B")

	_, err := s.AddDependency(ctx, user, a.ID, b.ID)
	require.NoError(t, err)
	again, err := s.AddDependency(ctx, user, a.ID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{b.ID}, again.Dependencies)
	assert.Equal(t, []events.Kind{events.SkillCreated, events.SkillCreated, events.DependencyAdded}, rec.kinds())
}

func TestAddDependencyUnknownSkill(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.AddDependency(context.Background(), user, "missing", "other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveDependency(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")
	b := create(t, s, "B", a.ID)

	updated, err := s.RemoveDependency(ctx, user, b.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Dependencies)

	again, err := s.RemoveDependency(ctx, user, b.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Dependencies)

	_, err = s.RemoveDependency(ctx, user, "missing", a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePrunesDependents(t *testing.T) {
	s, rec, _ := newService(t)
	ctx := context.Background()
	x := create(t, s, "X")
	a := create(t, s, "A", x.ID)
	b := create(t, s, "B", a.ID, x.ID)

	require.NoError(t, s.Delete(ctx, user, x.ID))

	list, err := s.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, sk := range list {
		assert.NotContains(t, sk.Dependencies, x.ID)
	}
	stored, err := s.Get(ctx, user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, stored.Dependencies)

	require.NoError(t, s.Delete(ctx, user, x.ID))
	assert.Equal(t, events.SkillDeleted, rec.kinds()[len(rec.kinds())-1])
}

// editingStore applies an edit to another skill just before the
// delete changeset runs.
type editingStore struct {
	Store
	gw       *repository.SkillGateway
	id       string
	progress int
}

func (e *editingStore) Apply(ctx context.Context, userID string, cs repository.Changeset[skill.Skill]) ([]skill.Skill, error) {
	if _, err := e.gw.Update(ctx, userID, e.id, skill.Patch{Progress: &e.progress}); err != nil {
		return nil, err
	}
	return e.gw.Apply(ctx, userID, cs)
}

func TestDeleteKeepsEditsMadeDuringPruning(t *testing.T) {
	ctx := context.Background()
	gw := repository.NewSkillGateway(dbtest.Open(t), time.Second)
	s := NewService(gw, events.Discard{}, nil)
	x := create(t, s, "X")
	a := create(t, s, "A", x.ID)

	s = NewService(&editingStore{Store: gw, gw: gw, id: a.ID, progress: 55}, events.Discard{}, nil)
	require.NoError(t, s.Delete(ctx, user, x.ID))

	got, err := s.Get(ctx, user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 55, got.Progress)
	assert.Empty(t, got.Dependencies)
}

func TestUpdateReplacesDependenciesAllOrNothing(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")
	b := create(t, s, "B", a.ID)
	c := create(t, s, "C")

	deps := []string{c.ID, b.ID}
	_, err := s.Update(ctx, user, a.ID, skill.Patch{Dependencies: &deps})
	assert.ErrorIs(t, err, domain.ErrCycle)

	name := "  Renamed "
	deps = []string{b.ID, " ", b.ID}
	updated, err := s.Update(ctx, user, c.ID, skill.Patch{Name: &name, Dependencies: &deps})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, []string{b.ID}, updated.Dependencies)
}

func TestUpdateValidation(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")

	_, err := s.Update(ctx, user, a.ID, skill.Patch{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	p := 150
	_, err = s.Update(ctx, user, a.ID, skill.Patch{Progress: &p})
	assert.ErrorIs(t, err, domain.ErrValidation)

	p = 100
	_, err = s.Update(ctx, user, "missing", skill.Patch{Progress: &p})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := s.Update(ctx, user, a.ID, skill.Patch{Progress: &p})
	require.NoError(t, err)
	assert.True(t, updated.Completed())
}

func TestSkillsAreScopedToOwner(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	a := create(t, s, "A")

	_, err := s.Get(ctx, "someone-else", a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.AddDependency(ctx, "someone-else", a.ID, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
