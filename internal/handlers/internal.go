package handlers

import (
	"github.com/Doscoding187/real-estate-portal-sub005/internal/config"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/middleware"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/services"
	"github.com/gofiber/fiber/v2"
)

type InternalHandler struct {
	search   *services.SearchService
	resolver *services.LocationResolver
}

func NewInternalHandler(search *services.SearchService, resolver *services.LocationResolver) *InternalHandler {
	return &InternalHandler{search: search, resolver: resolver}
}

func SetupInternalRoutes(router fiber.Router, cfg *config.Config, search *services.SearchService, resolver *services.LocationResolver) {
	h := NewInternalHandler(search, resolver)

	// Internal API (write-path collaborators) - API key required
	router.Use(middleware.APIKeyRequired(cfg))
	router.Post("/cache/invalidate", h.InvalidateCache)
	router.Post("/suburbs", h.EnsureSuburb)
}

// InvalidateCache godoc
// @Summary Invalidate the search result cache
// @Description Write-path services call this after any listing create/update/delete
// @Tags internal
// @Produce json
// @Param X-API-Key header string true "Internal API Key"
// @Success 200 {object} map[string]string
// @Router /internal/cache/invalidate [post]
func (h *InternalHandler) InvalidateCache(c *fiber.Ctx) error {
	if err := h.search.InvalidateCache(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "invalidated"})
}

// EnsureSuburbRequest is the upsert payload from the listing wizard.
type EnsureSuburbRequest struct {
	Province string `json:"province"`
	City     string `json:"city"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
}

// EnsureSuburb godoc
// @Summary Ensure a suburb exists under a province/city path
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Internal API Key"
// @Param request body EnsureSuburbRequest true "Suburb to ensure"
// @Success 200 {object} models.Suburb
// @Router /internal/suburbs [post]
func (h *InternalHandler) EnsureSuburb(c *fiber.Ctx) error {
	var req EnsureSuburbRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Province == "" || req.City == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "province, city and name are required")
	}

	suburb, err := h.resolver.EnsureSuburb(c.UserContext(), req.Province, req.City, req.Name, req.Slug)
	if err != nil {
		return err
	}

	return c.JSON(suburb)
}
