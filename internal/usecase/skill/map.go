package skill

import (
	"context"
	"fmt"

	"learnmap/internal/domain/skill"
)

const (
	mapColumns   = 6
	mapOriginX   = 200
	mapColumnGap = 200
	mapRowGap    = 150
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Category    string   `json:"category"`
	Progress    int      `json:"progress"`
	Description string   `json:"description,omitempty"`
	Position    Position `json:"position"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Map struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Map lays the skills out on a six-column grid in list order and draws one
// edge per dependency. Edges to ids that no longer exist are skipped.
func (s *Service) Map(ctx context.Context, userID string) (Map, error) {
	list, err := s.store.List(ctx, userID)
	if err != nil {
		return Map{}, err
	}
	return BuildMap(list), nil
}

func BuildMap(list []skill.Skill) Map {
	m := Map{Nodes: make([]Node, 0, len(list)), Edges: []Edge{}}
	known := make(map[string]bool, len(list))
	for _, sk := range list {
		known[sk.ID] = true
	}

	for i, sk := range list {
		m.Nodes = append(m.Nodes, Node{
			ID:          sk.ID,
			Label:       sk.Name,
			Category:    sk.Category,
			Progress:    sk.Progress,
			Description: sk.Description,
			Position: Position{
				X: mapOriginX + (i%mapColumns)*mapColumnGap,
				Y: (i / mapColumns) * mapRowGap,
			},
		})
		for _, dep := range sk.Dependencies {
			if !known[dep] {
				continue
			}
			m.Edges = append(m.Edges, Edge{
				ID:     fmt.Sprintf("e%s-%s", sk.ID, dep),
				Source: sk.ID,
				Target: dep,
			})
		}
	}
	return m
}
