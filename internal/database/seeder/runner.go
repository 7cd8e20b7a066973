package seeder

import (
	"context"
	"fmt"

	"learnmap/internal/pkg/logger"
)

type Runner struct {
	Seeders []Seeder
}

func (r Runner) Run(ctx context.Context, st *State) error {
	if st == nil {
		return fmt.Errorf("nil state")
	}
	if st.SkillIDs == nil {
		st.SkillIDs = make(map[string]string)
	}
	log := logger.Component(ctx, "seeder")
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, st); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.WithField("seeder", s.Name()).Info("seeded")
	}
	return nil
}
