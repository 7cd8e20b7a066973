package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"learnmap/internal/delivery/http/middleware"
	"learnmap/internal/domain/user"
	"learnmap/internal/pkg/response"
	useruc "learnmap/internal/usecase/user"
)

type UserUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (user.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in useruc.UpdateMeInput) (user.User, error)
}

type UserHandler struct {
	uc UserUsecase
}

type updateMeRequest struct {
	DisplayName *string `json:"display_name"`
}

func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me", h.GetMe)
	r.Put("/me", h.UpdateMe)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	u, err := h.uc.GetMe(c.Context(), id)
	if err != nil {
		return middleware.Fail("Failed to load profile", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, u)
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	var req updateMeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.uc.UpdateMe(c.Context(), id, useruc.UpdateMeInput{DisplayName: req.DisplayName})
	if err != nil {
		return middleware.Fail("Failed to update profile", err)
	}
	return response.Success(c, fiber.StatusOK, "Profile updated successfully", u)
}
