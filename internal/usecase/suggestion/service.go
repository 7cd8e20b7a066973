// Package suggestion feeds a user's current skills into the configured
// suggestion strategy and records how each request turned out.
package suggestion

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"learnmap/internal/domain"
	"learnmap/internal/domain/skill"
	"learnmap/internal/metrics"
	"learnmap/internal/pkg/logger"
	"learnmap/internal/suggest"
)

const maxGoalLength = 500

type SkillReader interface {
	List(ctx context.Context, userID string) ([]skill.Skill, error)
	Get(ctx context.Context, userID, id string) (skill.Skill, error)
}

type Service struct {
	strategy suggest.Strategy
	skills   SkillReader
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(strategy suggest.Strategy, skills SkillReader, m *metrics.Metrics) *Service {
	if strategy == nil {
		strategy = suggest.Keyword{}
	}
	return &Service{strategy: strategy, skills: skills, metrics: m, now: time.Now}
}

func (s *Service) Strategy() string {
	return s.strategy.Name()
}

// Skills suggests skills for goal. The user's existing skill names go into
// the prompt; failing to read them only narrows the prompt.
func (s *Service) Skills(ctx context.Context, userID, goal string) (suggest.Result[suggest.SkillSuggestion], error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return suggest.Result[suggest.SkillSuggestion]{}, domain.NewValidationError("goal", "must not be empty")
	}
	if len(goal) > maxGoalLength {
		return suggest.Result[suggest.SkillSuggestion]{}, domain.NewValidationError("goal", "must be at most 500 characters")
	}

	var existing []string
	if s.skills != nil && userID != "" {
		list, err := s.skills.List(ctx, userID)
		if err != nil {
			logger.Component(ctx, "suggestions").WithError(err).Warn("could not load existing skills")
		}
		for _, sk := range list {
			existing = append(existing, sk.Name)
		}
	}

	start := s.now()
	res := s.strategy.Skills(ctx, goal, existing)
	s.observe(ctx, "skills", res.Outcome, res.Reason, len(res.Items), start)
	return res, nil
}

// Resources suggests resources for one of the user's skills.
func (s *Service) Resources(ctx context.Context, userID, skillID string) (suggest.Result[suggest.ResourceSuggestion], error) {
	sk, err := s.skills.Get(ctx, userID, skillID)
	if err != nil {
		return suggest.Result[suggest.ResourceSuggestion]{}, err
	}

	start := s.now()
	res := s.strategy.Resources(ctx, sk)
	s.observe(ctx, "resources", res.Outcome, res.Reason, len(res.Items), start)
	return res, nil
}

func (s *Service) observe(ctx context.Context, kind string, outcome suggest.Outcome, reason string, n int, start time.Time) {
	d := s.now().Sub(start)
	s.metrics.ObserveSuggestion(kind, s.strategy.Name(), string(outcome), d)
	logger.Component(ctx, "suggestions").WithFields(logrus.Fields{
		"kind":     kind,
		"strategy": s.strategy.Name(),
		"outcome":  outcome,
		"reason":   reason,
		"items":    n,
		"took":     d,
	}).Debug("suggestions served")
}
