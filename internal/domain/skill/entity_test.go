package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmap/internal/domain"
)

func TestValidate(t *testing.T) {
	s := Skill{Name: "Go", Progress: 40}
	require.NoError(t, s.Validate())

	var ve *domain.ValidationError

	err := Skill{Name: "   "}.Validate()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	err = Skill{Name: "Go", Progress: 101}.Validate()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "progress", ve.Field)

	err = Skill{Name: "Go", Progress: -1}.Validate()
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = Skill{Name: "Go", Dependencies: []string{" "}}.Validate()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dependencies", ve.Field)
}

func TestNormalize(t *testing.T) {
	s := Skill{
		Name:         "  Go ",
		Category:     " Programming ",
		Dependencies: []string{"a", " a ", "", "b"},
	}
	s.Normalize()

	assert.Equal(t, "Go", s.Name)
	assert.Equal(t, "Programming", s.Category)
	assert.Equal(t, []string{"a", "b"}, s.Dependencies)

	empty := Skill{Name: "x"}
	empty.Normalize()
	assert.NotNil(t, empty.Dependencies)
}

func TestPatchApply(t *testing.T) {
	s := Skill{Name: "Go", Category: "lang", Progress: 10, Dependencies: []string{"a"}}
	p := 55
	deps := []string{"b"}

	Patch{Progress: &p}.Apply(&s)
	assert.Equal(t, 55, s.Progress)
	assert.Equal(t, "Go", s.Name)
	assert.Equal(t, []string{"a"}, s.Dependencies)

	Patch{Dependencies: &deps}.Apply(&s)
	deps[0] = "mutated"
	assert.Equal(t, []string{"b"}, s.Dependencies)
}

func TestCompleted(t *testing.T) {
	assert.True(t, Skill{Progress: 100}.Completed())
	assert.False(t, Skill{Progress: 99}.Completed())
}

func TestWithoutDependency(t *testing.T) {
	s := Skill{Name: "React", Progress: 40, Dependencies: []string{"js", "css", "js"}}
	orig := s.Dependencies

	WithoutDependency("js").Apply(&s)
	assert.Equal(t, []string{"css"}, s.Dependencies)
	assert.Equal(t, 40, s.Progress)
	assert.Equal(t, []string{"js", "css", "js"}, orig)

	WithoutDependency("absent").Apply(&s)
	assert.Equal(t, []string{"css"}, s.Dependencies)
	assert.NotPanics(t, func() { WithoutDependency("x").Apply(nil) })
}
