// Package seeder fills a fresh database with a demo account and a starter
// skill graph so the API has something to show.
package seeder

import (
	"context"

	"learnmap/internal/domain/resource"
	"learnmap/internal/domain/skill"
	authuc "learnmap/internal/usecase/auth"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

type Accounts interface {
	Register(ctx context.Context, in authuc.RegisterInput) (authuc.Session, error)
	Login(ctx context.Context, in authuc.LoginInput) (authuc.Session, error)
}

type Skills interface {
	List(ctx context.Context, userID string) ([]skill.Skill, error)
	Create(ctx context.Context, userID string, in skill.Skill) (skill.Skill, error)
}

type Resources interface {
	List(ctx context.Context, userID string) ([]resource.Resource, error)
	Create(ctx context.Context, userID string, in resource.Resource) (resource.Resource, error)
}

// State is shared by the seeders of one run. Earlier seeders fill UserID
// and SkillIDs for later ones.
type State struct {
	Accounts  Accounts
	Skills    Skills
	Resources Resources

	UserID   string
	SkillIDs map[string]string
}
