package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"learnmap/internal/delivery/http/middleware"
	"learnmap/internal/pkg/response"
	"learnmap/internal/suggest"
)

type SuggestionUsecase interface {
	Skills(ctx context.Context, userID, goal string) (suggest.Result[suggest.SkillSuggestion], error)
	Resources(ctx context.Context, userID, skillID string) (suggest.Result[suggest.ResourceSuggestion], error)
}

type SuggestionHandler struct {
	uc SuggestionUsecase
}

type skillSuggestionRequest struct {
	Goal string `json:"goal"`
}

func NewSuggestionHandler(uc SuggestionUsecase) *SuggestionHandler {
	return &SuggestionHandler{uc: uc}
}

func (h *SuggestionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/suggestions/skills", h.Skills)
	r.Get("/skills/:id/resource-suggestions", h.Resources)
}

// Skills always answers 200 once the goal is valid; an empty result carries
// its reason instead of an error status.
func (h *SuggestionHandler) Skills(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req skillSuggestionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.uc.Skills(c.Context(), userID, req.Goal)
	if err != nil {
		return middleware.Fail("Failed to suggest skills", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *SuggestionHandler) Resources(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	res, err := h.uc.Resources(c.Context(), userID, c.Params("id"))
	if err != nil {
		return middleware.Fail("Failed to suggest resources", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
