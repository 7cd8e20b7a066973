package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/domain/skill"
)

func TestBuildMapGrid(t *testing.T) {
	var list []skill.Skill
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		sk := skill.Skill{Name: "skill " + id}
		sk.ID = id
		list = append(list, sk)
	}
	list[1].Dependencies = []string{"a", "ghost"}

	m := BuildMap(list)

	require.Len(t, m.Nodes, 7)
	assert.Equal(t, Position{X: 200, Y: 0}, m.Nodes[0].Position)
	assert.Equal(t, Position{X: 1200, Y: 0}, m.Nodes[5].Position)
	assert.Equal(t, Position{X: 200, Y: 150}, m.Nodes[6].Position)
	assert.Equal(t, "skill b", m.Nodes[1].Label)

	assert.Equal(t, []Edge{{ID: "eb-a", Source: "b", Target: "a"}}, m.Edges)
}

func TestBuildMapEmpty(t *testing.T) {
	m := BuildMap(nil)
	assert.NotNil(t, m.Nodes)
	assert.NotNil(t, m.Edges)
}
