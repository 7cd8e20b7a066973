package v1

import (
	"github.com/gofiber/fiber/v3"

	"learnmap/internal/delivery/http/handler"
)

func RegisterUsers(r fiber.Router, userHandler *handler.UserHandler) {
	if r == nil {
		return
	}
	if userHandler == nil {
		return
	}

	userHandler.RegisterRoutes(r)
}
