package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"learnmap/internal/delivery/http/middleware"
	"learnmap/internal/domain/skill"
	"learnmap/internal/pkg/response"
	skilluc "learnmap/internal/usecase/skill"
)

type SkillUsecase interface {
	List(ctx context.Context, userID string) ([]skill.Skill, error)
	Get(ctx context.Context, userID, id string) (skill.Skill, error)
	Create(ctx context.Context, userID string, in skill.Skill) (skill.Skill, error)
	Update(ctx context.Context, userID, id string, patch skill.Patch) (skill.Skill, error)
	Delete(ctx context.Context, userID, id string) error
	AddDependency(ctx context.Context, userID, skillID, dependsOnID string) (skill.Skill, error)
	RemoveDependency(ctx context.Context, userID, skillID, dependsOnID string) (skill.Skill, error)
	Map(ctx context.Context, userID string) (skilluc.Map, error)
	Path(ctx context.Context, userID string) ([]skill.Skill, error)
}

type SkillHandler struct {
	uc SkillUsecase
}

type createSkillRequest struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Progress     int      `json:"progress"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
}

func NewSkillHandler(uc SkillUsecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/map", h.Map)
	grp.Get("/path", h.Path)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
	grp.Put("/:id/dependencies/:depId", h.AddDependency)
	grp.Delete("/:id/dependencies/:depId", h.RemoveDependency)
}

func (h *SkillHandler) List(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return middleware.Fail("Failed to load skills", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *SkillHandler) Get(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	item, err := h.uc.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return middleware.Fail("Failed to load skill", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, item)
}

func (h *SkillHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createSkillRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	created, err := h.uc.Create(c.Context(), userID, skill.Skill{
		Name:         req.Name,
		Category:     req.Category,
		Progress:     req.Progress,
		Description:  req.Description,
		Dependencies: req.Dependencies,
	})
	if err != nil {
		return middleware.Fail("Failed to create skill", err)
	}
	return response.Success(c, fiber.StatusCreated, "Skill created successfully", created)
}

func (h *SkillHandler) Update(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch skill.Patch
	if err := bind(c, &patch); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Context(), userID, c.Params("id"), patch)
	if err != nil {
		return middleware.Fail("Failed to update skill", err)
	}
	return response.Success(c, fiber.StatusOK, "Skill updated successfully", updated)
}

func (h *SkillHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return middleware.Fail("Failed to delete skill", err)
	}
	return response.Success(c, fiber.StatusOK, "Skill deleted successfully", nil)
}

func (h *SkillHandler) AddDependency(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	updated, err := h.uc.AddDependency(c.Context(), userID, c.Params("id"), c.Params("depId"))
	if err != nil {
		return middleware.Fail("Failed to add dependency", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *SkillHandler) RemoveDependency(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	updated, err := h.uc.RemoveDependency(c.Context(), userID, c.Params("id"), c.Params("depId"))
	if err != nil {
		return middleware.Fail("Failed to remove dependency", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *SkillHandler) Map(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	m, err := h.uc.Map(c.Context(), userID)
	if err != nil {
		return middleware.Fail("Failed to load skill map", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, m)
}

func (h *SkillHandler) Path(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	path, err := h.uc.Path(c.Context(), userID)
	if err != nil {
		return middleware.Fail("Failed to compute learning path", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, path)
}
