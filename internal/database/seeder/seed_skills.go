package seeder

import (
	"context"
	"errors"

	"learnmap/internal/domain/skill"
)

type starterSkill struct {
	Name        string
	Category    string
	Progress    int
	Description string
	Requires    []string
}

// Listed prerequisites first so every Requires name is already created.
var starterSkills = []starterSkill{
	{Name: "HTML", Category: "Frontend", Progress: 80, Description: "Document structure and semantics"},
	{Name: "CSS", Category: "Frontend", Progress: 60, Description: "Layout and styling", Requires: []string{"HTML"}},
	{Name: "JavaScript", Category: "Programming", Progress: 40, Description: "Language of the browser", Requires: []string{"HTML"}},
	{Name: "Git", Category: "Tools", Progress: 50, Description: "Version control basics"},
	{Name: "React", Category: "Frontend", Progress: 10, Description: "Component based UIs", Requires: []string{"JavaScript", "CSS"}},
	{Name: "Node.js", Category: "Backend", Description: "JavaScript on the server", Requires: []string{"JavaScript"}},
}

// SkillGraphSeeder creates the starter graph for the seeded user. It does
// nothing when the user already has skills.
type SkillGraphSeeder struct{}

func (SkillGraphSeeder) Name() string { return "skill_graph" }

func (SkillGraphSeeder) Run(ctx context.Context, st *State) error {
	if st.Skills == nil || st.UserID == "" {
		return errors.New("skill graph needs a user")
	}

	existing, err := st.Skills.List(ctx, st.UserID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		for _, s := range existing {
			st.SkillIDs[s.Name] = s.ID
		}
		return nil
	}

	for _, it := range starterSkills {
		deps := make([]string, 0, len(it.Requires))
		for _, name := range it.Requires {
			deps = append(deps, st.SkillIDs[name])
		}
		created, err := st.Skills.Create(ctx, st.UserID, skill.Skill{
			Name:         it.Name,
			Category:     it.Category,
			Progress:     it.Progress,
			Description:  it.Description,
			Dependencies: deps,
		})
		if err != nil {
			return err
		}
		st.SkillIDs[created.Name] = created.ID
	}
	return nil
}
