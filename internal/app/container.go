package app

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"learnmap/internal/config"
	"learnmap/internal/database"
	"learnmap/internal/database/migration"
	"learnmap/internal/events"
	"learnmap/internal/infrastructure/cache"
	"learnmap/internal/infrastructure/llm"
	"learnmap/internal/infrastructure/preview"
	"learnmap/internal/metrics"
	"learnmap/internal/pkg/jwt"
	"learnmap/internal/pkg/logger"
	"learnmap/internal/repository"
	"learnmap/internal/suggest"
	authuc "learnmap/internal/usecase/auth"
	resourceuc "learnmap/internal/usecase/resource"
	skilluc "learnmap/internal/usecase/skill"
	suggestionuc "learnmap/internal/usecase/suggestion"
	useruc "learnmap/internal/usecase/user"
)

// Container owns every long-lived dependency. Close releases them in
// reverse order of construction.
type Container struct {
	Config  config.Config
	DB      *database.DB
	Cache   *cache.Redis
	Bus     *events.Bus
	Metrics *metrics.Metrics
	Tokens  *jwt.HMACService

	Users     *repository.SQLUserRepository
	Skills    *repository.SkillGateway
	Resources *repository.ResourceGateway

	AuthService       *authuc.Service
	UserService       *useruc.Service
	SkillService      *skilluc.Service
	ResourceService   *resourceuc.Service
	SuggestionService *suggestionuc.Service
}

func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Open(dialCtx, cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	c := &Container{
		Config:  cfg,
		DB:      db,
		Bus:     events.NewBus(),
		Metrics: metrics.Default(),
		Tokens: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
		),
	}

	timeout := cfg.Database.StorageTimeout
	c.Users = repository.NewUserRepository(db.DB, timeout)
	c.Skills = repository.NewSkillGateway(db.DB, timeout)
	c.Resources = repository.NewResourceGateway(db.DB, timeout)

	provider, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	opts := []suggest.Option{
		suggest.WithTimeout(cfg.LLM.Timeout),
		suggest.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	if provider != nil && cfg.Redis.Enabled {
		c.Cache = cache.NewRedis(ctx, cfg.Redis)
		if c.Cache.Available() {
			opts = append(opts, suggest.WithCache(c.Cache, cfg.Redis.TTL))
		}
	}
	strategy := suggest.Select(provider, opts...)

	c.AuthService = authuc.NewService(c.Users, c.Tokens)
	c.UserService = useruc.NewService(c.Users)
	c.SkillService = skilluc.NewService(c.Skills, c.Bus, c.Metrics)
	c.ResourceService = resourceuc.NewService(c.Resources, c.Bus, preview.New(cfg.Preview))
	c.SuggestionService = suggestionuc.NewService(strategy, c.Skills, c.Metrics)

	logger.Component(ctx, "app").
		WithField("db_driver", db.Driver).
		WithField("suggestions", strategy.Name()).
		Info("container ready")
	return c, nil
}

// Migrate applies pending schema migrations for the configured driver.
func (c *Container) Migrate(ctx context.Context) error {
	return migration.Runner{Dialect: c.DB.Driver}.Run(ctx, c.DB.DB)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var result *multierror.Error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close cache"))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close database"))
		}
	}
	return result.ErrorOrNil()
}
