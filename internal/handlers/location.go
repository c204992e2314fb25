package handlers

import (
	"strconv"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LocationHandler struct {
	resolver *services.LocationResolver
}

func NewLocationHandler(resolver *services.LocationResolver) *LocationHandler {
	return &LocationHandler{resolver: resolver}
}

func SetupLocationRoutes(router fiber.Router, resolver *services.LocationResolver) {
	h := NewLocationHandler(resolver)

	router.Get("/resolve", h.Resolve)
	router.Get("/provinces", h.Provinces)
	router.Get("/provinces/:slug/cities", h.Cities)
	router.Get("/cities/:id/suburbs", h.Suburbs)
}

// Resolve godoc
// @Summary Resolve a location slug path
// @Description Resolves province/city/suburb slugs to the deepest valid level
// @Tags locations
// @Accept json
// @Produce json
// @Param province query string true "Province slug"
// @Param city query string false "City slug"
// @Param suburb query string false "Suburb slug"
// @Success 200 {object} services.ResolvedLocation
// @Router /locations/resolve [get]
func (h *LocationHandler) Resolve(c *fiber.Ctx) error {
	resolved, err := h.resolver.Resolve(
		c.UserContext(),
		c.Query("province"),
		c.Query("city"),
		c.Query("suburb"),
	)
	if err != nil {
		return err
	}

	return c.JSON(resolved)
}

// Provinces godoc
// @Summary List provinces
// @Tags locations
// @Produce json
// @Success 200 {array} models.Province
// @Router /locations/provinces [get]
func (h *LocationHandler) Provinces(c *fiber.Ctx) error {
	provinces, err := h.resolver.Provinces(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(provinces)
}

// Cities godoc
// @Summary List cities of a province
// @Tags locations
// @Produce json
// @Param slug path string true "Province slug"
// @Success 200 {array} models.City
// @Router /locations/provinces/{slug}/cities [get]
func (h *LocationHandler) Cities(c *fiber.Ctx) error {
	cities, err := h.resolver.CitiesOf(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(cities)
}

// Suburbs godoc
// @Summary List suburbs of a city
// @Tags locations
// @Produce json
// @Param id path int true "City ID"
// @Success 200 {array} models.Suburb
// @Router /locations/cities/{id}/suburbs [get]
func (h *LocationHandler) Suburbs(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid city ID")
	}

	suburbs, err := h.resolver.SuburbsOf(c.UserContext(), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(suburbs)
}
