package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"learnmap/internal/domain/skill"
)

type SkillGateway = Gateway[skill.Skill, *skill.Skill]

var skillTable = Table[skill.Skill]{
	Name:    "skills",
	Columns: []string{"name", "category", "progress", "description", "dependencies"},
	Values: func(s *skill.Skill) []any {
		return []any{s.Name, s.Category, s.Progress, s.Description, stringList(s.Dependencies)}
	},
	Dest: func(s *skill.Skill) []any {
		return []any{&s.Name, &s.Category, &s.Progress, &s.Description, (*stringList)(&s.Dependencies)}
	},
}

func NewSkillGateway(db *sqlx.DB, timeout time.Duration) *SkillGateway {
	return NewGateway[skill.Skill, *skill.Skill](db, skillTable, timeout)
}
