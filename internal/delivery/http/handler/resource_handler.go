package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"learnmap/internal/delivery/http/middleware"
	"learnmap/internal/domain/resource"
	"learnmap/internal/infrastructure/preview"
	"learnmap/internal/pkg/response"
)

type ResourceUsecase interface {
	List(ctx context.Context, userID string) ([]resource.Resource, error)
	Get(ctx context.Context, userID, id string) (resource.Resource, error)
	Create(ctx context.Context, userID string, in resource.Resource) (resource.Resource, error)
	Update(ctx context.Context, userID, id string, patch resource.Patch) (resource.Resource, error)
	Toggle(ctx context.Context, userID, id string) (resource.Resource, error)
	Delete(ctx context.Context, userID, id string) error
	Preview(ctx context.Context, rawURL string) (preview.Preview, error)
}

type ResourceHandler struct {
	uc ResourceUsecase
}

type createResourceRequest struct {
	Title                string            `json:"title"`
	URL                  string            `json:"url"`
	Type                 resource.Type     `json:"type"`
	Description          string            `json:"description"`
	Completed            bool              `json:"completed"`
	Status               resource.Status   `json:"status"`
	Priority             resource.Priority `json:"priority"`
	Tags                 []string          `json:"tags"`
	EstimatedTimeMinutes *int              `json:"estimated_time_minutes"`
	ProgressPercentage   *int              `json:"progress_percentage"`
	LastAccessedAt       *time.Time        `json:"last_accessed_at"`
}

func NewResourceHandler(uc ResourceUsecase) *ResourceHandler {
	return &ResourceHandler{uc: uc}
}

func (h *ResourceHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/resources")
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/preview", h.Preview)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
	grp.Post("/:id/toggle", h.Toggle)
}

func (h *ResourceHandler) List(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return middleware.Fail("Failed to load resources", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ResourceHandler) Get(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	item, err := h.uc.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return middleware.Fail("Failed to load resource", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, item)
}

func (h *ResourceHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createResourceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	created, err := h.uc.Create(c.Context(), userID, resource.Resource{
		Title:                req.Title,
		URL:                  req.URL,
		Type:                 req.Type,
		Description:          req.Description,
		Completed:            req.Completed,
		Status:               req.Status,
		Priority:             req.Priority,
		Tags:                 req.Tags,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
		ProgressPercentage:   req.ProgressPercentage,
		LastAccessedAt:       req.LastAccessedAt,
	})
	if err != nil {
		return middleware.Fail("Failed to create resource", err)
	}
	return response.Success(c, fiber.StatusCreated, "Resource created successfully", created)
}

func (h *ResourceHandler) Update(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch resource.Patch
	if err := bind(c, &patch); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Context(), userID, c.Params("id"), patch)
	if err != nil {
		return middleware.Fail("Failed to update resource", err)
	}
	return response.Success(c, fiber.StatusOK, "Resource updated successfully", updated)
}

func (h *ResourceHandler) Toggle(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	updated, err := h.uc.Toggle(c.Context(), userID, c.Params("id"))
	if err != nil {
		return middleware.Fail("Failed to update resource", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *ResourceHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return middleware.Fail("Failed to delete resource", err)
	}
	return response.Success(c, fiber.StatusOK, "Resource deleted successfully", nil)
}

func (h *ResourceHandler) Preview(c fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	p, err := h.uc.Preview(c.Context(), c.Query("url"))
	if err != nil {
		return middleware.Fail("Failed to preview link", err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}
