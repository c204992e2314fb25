package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PropertyHandler struct {
	search *services.SearchService
}

func NewPropertyHandler(search *services.SearchService) *PropertyHandler {
	return &PropertyHandler{search: search}
}

func SetupPropertyRoutes(router fiber.Router, search *services.SearchService) {
	h := NewPropertyHandler(search)

	router.Get("/", h.Search)
	router.Get("/filter-counts", h.FilterCounts)
	router.Get("/:id", h.Get)
}

// Search godoc
// @Summary Search properties
// @Tags properties
// @Accept json
// @Produce json
// @Param province query string false "Province slug"
// @Param city query string false "City slug"
// @Param suburbs query string false "Comma-separated suburb slugs"
// @Param property_type query string false "Comma-separated property types"
// @Param listing_type query string false "Comma-separated listing types"
// @Param status query string false "Comma-separated statuses"
// @Param min_price query int false "Minimum price in rand"
// @Param max_price query int false "Maximum price in rand"
// @Param sort query string false "Sort option"
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page"
// @Success 200 {object} services.SearchResults
// @Router /properties [get]
func (h *PropertyHandler) Search(c *fiber.Ctx) error {
	filters, err := parseFilters(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "0"))
	sortOption := services.SortOption(c.Query("sort"))

	results, err := h.search.Search(c.UserContext(), filters, sortOption, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(results)
}

// FilterCounts godoc
// @Summary Preview counts per filter choice
// @Tags properties
// @Accept json
// @Produce json
// @Success 200 {object} services.FilterCounts
// @Router /properties/filter-counts [get]
func (h *PropertyHandler) FilterCounts(c *fiber.Ctx) error {
	filters, err := parseFilters(c)
	if err != nil {
		return err
	}

	counts, err := h.search.FilterCounts(c.UserContext(), filters)
	if err != nil {
		return err
	}

	return c.JSON(counts)
}

// Get godoc
// @Summary Get property by ID
// @Tags properties
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} models.Property
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}

	property, err := h.search.GetByID(c.UserContext(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Property not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(property)
}

func parseFilters(c *fiber.Ctx) (*services.PropertyFilters, error) {
	filters := &services.PropertyFilters{
		ProvinceSlug:  c.Query("province"),
		CitySlug:      c.Query("city"),
		Suburbs:       queryCSV(c, "suburbs"),
		PropertyTypes: queryCSV(c, "property_type"),
		ListingTypes:  queryCSV(c, "listing_type"),
		Statuses:      queryCSV(c, "status"),
		LoadShedding:  queryCSV(c, "load_shedding"),

		MinPrice:     queryInt64Ptr(c, "min_price"),
		MaxPrice:     queryInt64Ptr(c, "max_price"),
		MinBedrooms:  queryIntPtr(c, "min_bedrooms"),
		MaxBedrooms:  queryIntPtr(c, "max_bedrooms"),
		MinBathrooms: queryFloatPtr(c, "min_bathrooms"),
		MaxBathrooms: queryFloatPtr(c, "max_bathrooms"),
		MinErfSize:   queryFloatPtr(c, "min_erf_size"),
		MaxErfSize:   queryFloatPtr(c, "max_erf_size"),
		MinFloorSize: queryFloatPtr(c, "min_floor_size"),
		MaxFloorSize: queryFloatPtr(c, "max_floor_size"),

		SecurityEstate: queryBoolPtr(c, "security_estate"),
		PetFriendly:    queryBoolPtr(c, "pet_friendly"),
		FibreReady:     queryBoolPtr(c, "fibre_ready"),
	}

	if titleType := c.Query("title_type"); titleType != "" {
		filters.TitleType = &titleType
	}

	bounds, err := parseBounds(c)
	if err != nil {
		return nil, err
	}
	filters.Bounds = bounds

	return filters, nil
}

// parseBounds reads the map viewport. All four edges must be present together.
func parseBounds(c *fiber.Ctx) (*services.Bounds, error) {
	keys := []string{"north", "south", "east", "west"}
	present := 0
	for _, key := range keys {
		if c.Query(key) != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(keys) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bounds require north, south, east and west")
	}

	values := make([]float64, len(keys))
	for i, key := range keys {
		value, err := strconv.ParseFloat(c.Query(key), 64)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid bounds value for "+key)
		}
		values[i] = value
	}

	return &services.Bounds{
		North: values[0],
		South: values[1],
		East:  values[2],
		West:  values[3],
	}, nil
}

func queryCSV(c *fiber.Ctx, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func queryIntPtr(c *fiber.Ctx, key string) *int {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return &value
		}
	}
	return nil
}

func queryInt64Ptr(c *fiber.Ctx, key string) *int64 {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return &value
		}
	}
	return nil
}

func queryFloatPtr(c *fiber.Ctx, key string) *float64 {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			return &value
		}
	}
	return nil
}

func queryBoolPtr(c *fiber.Ctx, key string) *bool {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			return &value
		}
	}
	return nil
}
