package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"learnmap/internal/delivery/http/handler"
	"learnmap/internal/delivery/http/middleware"
	"learnmap/internal/delivery/http/routes"
	v1 "learnmap/internal/delivery/http/routes/v1"
	"learnmap/internal/pkg/logger"
	"learnmap/internal/ws"
)

type App struct {
	Fiber *fiber.App
	WS    *http.Server
	Hub   *ws.Hub

	log         *logrus.Entry
	stopHub     context.CancelFunc
	stopForward func()
}

// New builds the HTTP API and the websocket server on top of c. The hub
// starts running immediately and stops on Shutdown.
func New(ctx context.Context, c *Container) (*App, error) {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})
	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	a := &App{Fiber: f, log: logger.Component(ctx, "app")}

	if port := strings.TrimSpace(c.Config.App.WSPort); port != "" {
		addr, err := ListenAddr(port)
		if err != nil {
			return nil, errors.Wrap(err, "invalid WS port")
		}
		hubCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.Hub = ws.NewHub(hubCtx)
		a.stopHub = cancel
		go a.Hub.Run(hubCtx)
		a.stopForward = ws.Forward(c.Bus, a.Hub)
		a.WS = &http.Server{
			Addr:              addr,
			Handler:           ws.NewHandler(a.Hub, c.Tokens).Mux(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return a, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger.L, c.Metrics).Middleware())
	app.Use(middleware.NewErrorMiddleware().Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	var cachePinger handler.Pinger
	if c.Cache != nil && c.Cache.Available() {
		cachePinger = c.Cache
	}

	routes.NewRegistry(
		handler.NewHealthHandler(c.DB, cachePinger, c.SuggestionService.Strategy()),
		v1.Handlers{
			Auth:       handler.NewAuthHandler(c.AuthService),
			User:       handler.NewUserHandler(c.UserService),
			Skill:      handler.NewSkillHandler(c.SkillService),
			Resource:   handler.NewResourceHandler(c.ResourceService),
			Suggestion: handler.NewSuggestionHandler(c.SuggestionService),
			AuthMw:     middleware.NewAuthMiddleware(c.Tokens),
		},
	).Register(app)
}

// Serve blocks until ctx ends or either listener fails, then shuts both
// down.
func (a *App) Serve(ctx context.Context, httpAddr string) error {
	errCh := make(chan error, 2)
	go func() {
		errCh <- a.Fiber.Listen(httpAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	if a.WS != nil {
		go func() {
			a.log.WithField("addr", a.WS.Addr).Info("websocket listening")
			if err := a.WS.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}
	a.log.WithField("addr", httpAddr).Info("http listening")

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	var result *multierror.Error
	if serveErr != nil {
		result = multierror.Append(result, serveErr)
	}
	if err := a.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (a *App) Shutdown(ctx context.Context) error {
	var result *multierror.Error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "shutdown http"))
	}
	if a.WS != nil {
		if err := a.WS.Shutdown(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "shutdown websocket"))
		}
	}
	if a.stopForward != nil {
		a.stopForward()
	}
	if a.stopHub != nil {
		a.stopHub()
	}
	return result.ErrorOrNil()
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
