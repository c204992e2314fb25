package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/database"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/logger"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrLocationNotFound is returned when the province slug has no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrParentNotFound is returned by EnsureSuburb when the city itself
	// cannot be resolved.
	ErrParentNotFound = errors.New("parent location not found")
)

// ResolvedLevel is the deepest hierarchy level a slug path resolved to.
type ResolvedLevel string

const (
	LevelProvince ResolvedLevel = "province"
	LevelCity     ResolvedLevel = "city"
	LevelSuburb   ResolvedLevel = "suburb"
)

// ResolvedLocation holds the records resolved up to Level. Fields below Level
// are nil.
type ResolvedLocation struct {
	Level    ResolvedLevel    `json:"level"`
	Province *models.Province `json:"province"`
	City     *models.City     `json:"city,omitempty"`
	Suburb   *models.Suburb   `json:"suburb,omitempty"`
}

// LocationIDs is the projection of a resolution the condition builder needs.
type LocationIDs struct {
	ProvinceID *uint
	CityID     *uint
	SuburbID   *uint
}

// LocationResolver resolves slug paths against the Province→City→Suburb
// hierarchy. Lookups are case-insensitive and each child lookup is constrained
// to its resolved parent id; an unknown child slug degrades to the parent
// level instead of failing the call.
type LocationResolver struct {
	db  *database.DB
	log *zap.SugaredLogger
}

func NewLocationResolver(db *database.DB) *LocationResolver {
	return &LocationResolver{db: db, log: logger.GetLogger("location")}
}

// Resolve maps a (province, city, suburb) slug path to the deepest level that
// validly matches. An empty or unknown province slug is ErrLocationNotFound;
// unknown city/suburb slugs fall back to the nearest resolvable ancestor.
func (r *LocationResolver) Resolve(ctx context.Context, provinceSlug, citySlug, suburbSlug string) (*ResolvedLocation, error) {
	provinceSlug = strings.TrimSpace(provinceSlug)
	if provinceSlug == "" {
		return nil, ErrLocationNotFound
	}

	var province models.Province
	err := r.db.WithContext(ctx).
		Where("LOWER(slug) = ?", strings.ToLower(provinceSlug)).
		First(&province).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedLocation{Level: LevelProvince, Province: &province}

	citySlug = strings.TrimSpace(citySlug)
	if citySlug == "" {
		return resolved, nil
	}

	// The parent-id constraint matters: a slug match alone could pick up a
	// same-named city in another province.
	var city models.City
	err = r.db.WithContext(ctx).
		Where("province_id = ? AND LOWER(slug) = ?", province.ID, strings.ToLower(citySlug)).
		First(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warnw("city slug did not resolve, degrading to province",
			"province", provinceSlug, "city", citySlug)
		return resolved, nil
	}
	if err != nil {
		return nil, err
	}

	resolved.Level = LevelCity
	resolved.City = &city

	suburbSlug = strings.TrimSpace(suburbSlug)
	if suburbSlug == "" {
		return resolved, nil
	}

	var suburb models.Suburb
	err = r.db.WithContext(ctx).
		Where("city_id = ? AND LOWER(slug) = ?", city.ID, strings.ToLower(suburbSlug)).
		First(&suburb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warnw("suburb slug did not resolve, degrading to city",
			"province", provinceSlug, "city", citySlug, "suburb", suburbSlug)
		return resolved, nil
	}
	if err != nil {
		return nil, err
	}

	resolved.Level = LevelSuburb
	resolved.Suburb = &suburb
	return resolved, nil
}

// LocationIDs resolves a slug path and returns only the identifiers present.
func (r *LocationResolver) LocationIDs(ctx context.Context, provinceSlug, citySlug, suburbSlug string) (*LocationIDs, error) {
	resolved, err := r.Resolve(ctx, provinceSlug, citySlug, suburbSlug)
	if err != nil {
		return nil, err
	}

	ids := &LocationIDs{ProvinceID: &resolved.Province.ID}
	if resolved.City != nil {
		ids.CityID = &resolved.City.ID
	}
	if resolved.Suburb != nil {
		ids.SuburbID = &resolved.Suburb.ID
	}
	return ids, nil
}

// EnsureSuburb resolves a suburb under the given province/city path, creating
// it when absent. The listing wizard calls this so free-typed suburb names end
// up in the normalized hierarchy. Returns ErrParentNotFound when the city
// itself cannot be resolved.
func (r *LocationResolver) EnsureSuburb(ctx context.Context, provinceSlug, citySlug, name, slug string) (*models.Suburb, error) {
	resolved, err := r.Resolve(ctx, provinceSlug, citySlug, "")
	if errors.Is(err, ErrLocationNotFound) {
		return nil, ErrParentNotFound
	}
	if err != nil {
		return nil, err
	}
	if resolved.City == nil {
		return nil, ErrParentNotFound
	}

	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("cannot derive a slug from suburb name %q", name)
	}

	var suburb models.Suburb
	err = r.db.WithContext(ctx).
		Where("city_id = ? AND LOWER(slug) = ?", resolved.City.ID, strings.ToLower(slug)).
		First(&suburb).Error
	if err == nil {
		return &suburb, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	suburb = models.Suburb{
		CityID: resolved.City.ID,
		Name:   strings.TrimSpace(name),
		Slug:   slug,
	}
	if err := r.db.WithContext(ctx).Create(&suburb).Error; err != nil {
		return nil, err
	}

	r.log.Infow("created suburb", "city_id", suburb.CityID, "slug", suburb.Slug)
	return &suburb, nil
}

// Provinces lists the full top level for the filter widgets.
func (r *LocationResolver) Provinces(ctx context.Context) ([]models.Province, error) {
	var provinces []models.Province
	err := r.db.WithContext(ctx).Order("name ASC").Find(&provinces).Error
	if err != nil {
		return nil, err
	}
	return provinces, nil
}

// CitiesOf lists the cities of a province identified by slug.
func (r *LocationResolver) CitiesOf(ctx context.Context, provinceSlug string) ([]models.City, error) {
	resolved, err := r.Resolve(ctx, provinceSlug, "", "")
	if err != nil {
		return nil, err
	}

	var cities []models.City
	err = r.db.WithContext(ctx).
		Where("province_id = ?", resolved.Province.ID).
		Order("name ASC").
		Find(&cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// SuburbsOf lists the suburbs of a city.
func (r *LocationResolver) SuburbsOf(ctx context.Context, cityID uint) ([]models.Suburb, error) {
	var suburbs []models.Suburb
	err := r.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Order("name ASC").
		Find(&suburbs).Error
	if err != nil {
		return nil, err
	}
	return suburbs, nil
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]`)
	slugHyphenRuns   = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL-safe slug from a display name: lowercase, whitespace
// to hyphens, strip everything outside [a-z0-9-], collapse and trim hyphens.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugHyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
