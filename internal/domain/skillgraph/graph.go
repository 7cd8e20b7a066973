// Package skillgraph keeps a user's skills as a DAG under the
// "depends on" relation and answers structural queries about it.
package skillgraph

import (
	"container/heap"
	"iter"
	"slices"

	"learnmap/internal/domain"
	"learnmap/internal/domain/skill"
)

// Graph is not safe for concurrent use. Build one per request from the
// stored skills, mutate it, then persist what changed.
type Graph struct {
	nodes map[string]*node
	seq   int
}

type node struct {
	skill skill.Skill
	order int
}

// New builds a graph from skills in insertion order (oldest first).
// Dangling dependency ids are kept as-is. Stored cycles are not rejected
// here; TopologicalOrder reports them.
func New(skills []skill.Skill) *Graph {
	g := &Graph{nodes: make(map[string]*node, len(skills))}
	for _, s := range skills {
		if _, ok := g.nodes[s.ID]; ok {
			continue
		}
		s.Dependencies = dedupe(s.Dependencies)
		g.insert(s)
	}
	return g
}

func (g *Graph) insert(s skill.Skill) {
	g.nodes[s.ID] = &node{skill: s, order: g.seq}
	g.seq++
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Skill returns a copy of the stored skill.
func (g *Graph) Skill(id string) (skill.Skill, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return skill.Skill{}, false
	}
	return cloneSkill(n.skill), true
}

// Skills returns every skill in insertion order.
func (g *Graph) Skills() []skill.Skill {
	out := make([]skill.Skill, 0, len(g.nodes))
	for _, n := range g.sorted() {
		out = append(out, cloneSkill(n.skill))
	}
	return out
}

// AddSkill inserts a new node. Other skills may already reference its id,
// so its own dependencies are checked for cycles like any added edge.
func (g *Graph) AddSkill(s skill.Skill) error {
	if s.ID == "" {
		return domain.NewValidationError("id", "must not be empty")
	}
	if g.Has(s.ID) {
		return domain.NewValidationError("id", "already exists")
	}
	s.Dependencies = dedupe(s.Dependencies)
	for _, dep := range s.Dependencies {
		if dep == s.ID || g.reaches(dep, s.ID) {
			return &domain.CycleError{SkillID: s.ID, DependsOnID: dep}
		}
	}
	g.insert(s)
	return nil
}

// AddDependency records that skillID requires dependsOnID. Adding an edge
// that already exists is a no-op; changed reports whether anything moved.
func (g *Graph) AddDependency(skillID, dependsOnID string) (changed bool, err error) {
	n, ok := g.nodes[skillID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if skillID == dependsOnID || g.reaches(dependsOnID, skillID) {
		return false, &domain.CycleError{SkillID: skillID, DependsOnID: dependsOnID}
	}
	if slices.Contains(n.skill.Dependencies, dependsOnID) {
		return false, nil
	}
	n.skill.Dependencies = append(n.skill.Dependencies, dependsOnID)
	return true, nil
}

// RemoveDependency drops the edge if present.
func (g *Graph) RemoveDependency(skillID, dependsOnID string) (changed bool) {
	n, ok := g.nodes[skillID]
	if !ok {
		return false
	}
	idx := slices.Index(n.skill.Dependencies, dependsOnID)
	if idx < 0 {
		return false
	}
	n.skill.Dependencies = slices.Delete(n.skill.Dependencies, idx, idx+1)
	return true
}

// SetDependencies replaces the whole list or leaves the graph untouched.
func (g *Graph) SetDependencies(skillID string, deps []string) error {
	n, ok := g.nodes[skillID]
	if !ok {
		return domain.ErrNotFound
	}
	deps = dedupe(deps)

	prev := n.skill.Dependencies
	n.skill.Dependencies = nil
	for _, dep := range deps {
		if dep == skillID || g.reaches(dep, skillID) {
			n.skill.Dependencies = prev
			return &domain.CycleError{SkillID: skillID, DependsOnID: dep}
		}
	}
	n.skill.Dependencies = deps
	return nil
}

// RemoveSkill deletes the node and prunes its id from every dependency list.
// It returns the ids of the skills whose lists were pruned, in insertion order.
func (g *Graph) RemoveSkill(skillID string) ([]string, error) {
	if _, ok := g.nodes[skillID]; !ok {
		return nil, domain.ErrNotFound
	}

	// Compute the full change before touching anything.
	next := make(map[string][]string)
	for _, n := range g.sorted() {
		if n.skill.ID == skillID {
			continue
		}
		if !slices.Contains(n.skill.Dependencies, skillID) {
			continue
		}
		next[n.skill.ID] = slices.DeleteFunc(slices.Clone(n.skill.Dependencies), func(d string) bool {
			return d == skillID
		})
	}

	pruned := make([]string, 0, len(next))
	for _, n := range g.sorted() {
		if deps, ok := next[n.skill.ID]; ok {
			n.skill.Dependencies = deps
			pruned = append(pruned, n.skill.ID)
		}
	}
	delete(g.nodes, skillID)
	return pruned, nil
}

// ProgressOf returns the stored progress. Dependencies are prerequisites,
// not sub-tasks, so nothing is rolled up.
func (g *Graph) ProgressOf(skillID string) (int, error) {
	n, ok := g.nodes[skillID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return n.skill.Progress, nil
}

// Dependents returns the ids of skills that directly require id.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for _, n := range g.sorted() {
		if slices.Contains(n.skill.Dependencies, id) {
			out = append(out, n.skill.ID)
		}
	}
	return out
}

// TopologicalOrder lazily yields skill ids so that every id comes after
// all the ids it depends on. Independent skills come out in insertion
// order. If the stored graph has a cycle the last pair carries a
// *domain.CycleError.
func (g *Graph) TopologicalOrder() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		inDegree := make(map[string]int, len(g.nodes))
		dependents := make(map[string][]*node, len(g.nodes))
		for _, n := range g.nodes {
			for _, dep := range n.skill.Dependencies {
				if _, ok := g.nodes[dep]; !ok {
					continue
				}
				inDegree[n.skill.ID]++
				dependents[dep] = append(dependents[dep], n)
			}
		}

		ready := &byOrder{}
		for _, n := range g.nodes {
			if inDegree[n.skill.ID] == 0 {
				heap.Push(ready, n)
			}
		}

		visited := 0
		for ready.Len() > 0 {
			n := heap.Pop(ready).(*node)
			visited++
			if !yield(n.skill.ID, nil) {
				return
			}
			for _, d := range dependents[n.skill.ID] {
				inDegree[d.skill.ID]--
				if inDegree[d.skill.ID] == 0 {
					heap.Push(ready, d)
				}
			}
		}

		if visited < len(g.nodes) {
			yield("", &domain.CycleError{})
		}
	}
}

// Order collects TopologicalOrder into a slice.
func (g *Graph) Order() ([]string, error) {
	out := make([]string, 0, len(g.nodes))
	for id, err := range g.TopologicalOrder() {
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// reaches reports whether to is reachable from from by following
// dependency edges. Dangling ids end the walk.
func (g *Graph) reaches(from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		for _, dep := range n.skill.Dependencies {
			if dep == to {
				return true
			}
			if !seen[dep] {
				seen[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return false
}

func (g *Graph) sorted() []*node {
	out := make([]*node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *node) int { return a.order - b.order })
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func cloneSkill(s skill.Skill) skill.Skill {
	s.Dependencies = slices.Clone(s.Dependencies)
	if s.Dependencies == nil {
		s.Dependencies = []string{}
	}
	return s
}

// byOrder is a min-heap of nodes keyed by insertion order.
type byOrder []*node

func (h byOrder) Len() int           { return len(h) }
func (h byOrder) Less(i, j int) bool { return h[i].order < h[j].order }
func (h byOrder) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *byOrder) Push(x any) { *h = append(*h, x.(*node)) }

func (h *byOrder) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}
