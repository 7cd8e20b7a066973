package v1

import (
	"github.com/gofiber/fiber/v3"

	"learnmap/internal/delivery/http/handler"
	"learnmap/internal/delivery/http/middleware"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Skill      *handler.SkillHandler
	Resource   *handler.ResourceHandler
	Suggestion *handler.SuggestionHandler
	AuthMw     *middleware.AuthMiddleware
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.AuthMw == nil {
		return
	}

	protected := r.Group("", h.AuthMw.Middleware())
	RegisterUsers(protected.Group("/users"), h.User)
	if h.Skill != nil {
		h.Skill.RegisterRoutes(protected)
	}
	if h.Resource != nil {
		h.Resource.RegisterRoutes(protected)
	}
	if h.Suggestion != nil {
		h.Suggestion.RegisterRoutes(protected)
	}
}
