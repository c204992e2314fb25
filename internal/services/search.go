package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/cache"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/database"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/logger"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cache keys live under a versioned namespace so a format change can't read
// stale payloads; bulk invalidation deletes the whole "search:" prefix.
const (
	cacheNamespace  = "search:"
	searchKeyPrefix = cacheNamespace + "v1:"
)

// SearchResults is the page of listings returned to callers.
type SearchResults struct {
	Items    []models.Property `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasMore  bool              `json:"has_more"`
}

// SearchConfig carries the tunables the orchestrator needs.
type SearchConfig struct {
	CacheTTL        time.Duration
	Timeout         time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

// SearchService turns a filter record into a sorted, paginated, cached result
// set. It is the only entry point external collaborators use.
type SearchService struct {
	db       *database.DB
	cache    cache.Store
	resolver *LocationResolver
	log      *zap.SugaredLogger
	cfg      SearchConfig
}

func NewSearchService(db *database.DB, store cache.Store, resolver *LocationResolver, cfg SearchConfig) *SearchService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 12
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SearchService{
		db:       db,
		cache:    store,
		resolver: resolver,
		log:      logger.GetLogger("search"),
		cfg:      cfg,
	}
}

// Search runs one search call: cache check, location resolution, count query,
// page query, batched image fetch, cache write. A store failure propagates; a
// cache failure degrades to a direct query.
func (s *SearchService) Search(ctx context.Context, filters *PropertyFilters, sortOption SortOption, page, pageSize int) (*SearchResults, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if filters == nil {
		filters = &PropertyFilters{}
	}
	page, pageSize = s.normalizePage(page, pageSize)

	key := s.cacheKey(filters, sortOption, page, pageSize)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	loc, notFound, err := s.resolveFilters(ctx, filters)
	if err != nil {
		return nil, err
	}
	if notFound {
		// Unknown province: a normal empty result, not an error. Cached like
		// any other result so repeated bad slugs don't hit the store.
		results := emptyResults(page, pageSize)
		s.cacheSet(ctx, key, results)
		return results, nil
	}

	preds, err := BuildConditions(filters, loc)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.Property{}).Scopes(ApplyPredicates(preds))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	offset := (page - 1) * pageSize
	var items []models.Property
	err = query.
		Order(BuildSort(sortOption).Clause()).
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}

	if err := s.attachImages(ctx, items); err != nil {
		return nil, err
	}

	results := &SearchResults{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  int64(offset+pageSize) < total,
	}
	if results.Items == nil {
		results.Items = []models.Property{}
	}

	s.cacheSet(ctx, key, results)
	return results, nil
}

// GetByID returns one listing with its images.
func (s *SearchService) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// PriceBandCount is one fixed price band with its match count.
type PriceBandCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// FilterCounts previews how many listings each filter choice would match.
type FilterCounts struct {
	ByPropertyType map[string]int64 `json:"by_property_type"`
	ByPriceBand    []PriceBandCount `json:"by_price_band"`
}

// priceBands are the portal's fixed bands, in rand. Max 0 means unbounded.
var priceBands = []struct {
	Label string
	Min   int64
	Max   int64
}{
	{"Under R1M", 0, 1_000_000},
	{"R1M - R2M", 1_000_000, 2_000_000},
	{"R2M - R3M", 2_000_000, 3_000_000},
	{"R3M - R5M", 3_000_000, 5_000_000},
	{"Over R5M", 5_000_000, 0},
}

// FilterCounts reports counts grouped by property type and by the fixed price
// bands, reusing the search predicate builder. The dimension being counted is
// cleared from its own predicate set so every choice in that dimension gets a
// count.
func (s *SearchService) FilterCounts(ctx context.Context, filters *PropertyFilters) (*FilterCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if filters == nil {
		filters = &PropertyFilters{}
	}

	loc, notFound, err := s.resolveFilters(ctx, filters)
	if err != nil {
		return nil, err
	}

	counts := &FilterCounts{
		ByPropertyType: make(map[string]int64),
		ByPriceBand:    make([]PriceBandCount, 0, len(priceBands)),
	}
	if notFound {
		for _, band := range priceBands {
			counts.ByPriceBand = append(counts.ByPriceBand, PriceBandCount{Label: band.Label})
		}
		return counts, nil
	}

	// Type counts, with the type filter itself cleared
	typeFilters := *filters
	typeFilters.PropertyTypes = nil
	typePreds, err := BuildConditions(&typeFilters, loc)
	if err != nil {
		return nil, err
	}

	var typeRows []struct {
		PropertyType string
		Count        int64
	}
	err = s.db.WithContext(ctx).Model(&models.Property{}).
		Scopes(ApplyPredicates(typePreds)).
		Select("property_type, COUNT(*) AS count").
		Group("property_type").
		Scan(&typeRows).Error
	if err != nil {
		return nil, fmt.Errorf("count by property type: %w", err)
	}
	for _, row := range typeRows {
		counts.ByPropertyType[row.PropertyType] = row.Count
	}

	// Band counts, with the price filter itself cleared
	bandFilters := *filters
	bandFilters.MinPrice = nil
	bandFilters.MaxPrice = nil
	bandPreds, err := BuildConditions(&bandFilters, loc)
	if err != nil {
		return nil, err
	}

	for _, band := range priceBands {
		query := s.db.WithContext(ctx).Model(&models.Property{}).
			Scopes(ApplyPredicates(bandPreds)).
			Where("price >= ?", band.Min)
		if band.Max > 0 {
			query = query.Where("price < ?", band.Max)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count price band %q: %w", band.Label, err)
		}
		counts.ByPriceBand = append(counts.ByPriceBand, PriceBandCount{Label: band.Label, Count: count})
	}

	return counts, nil
}

// InvalidateCache drops the entire search namespace. Write-path collaborators
// call this on any listing create/update/delete.
func (s *SearchService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.DeleteByPrefix(ctx, cacheNamespace); err != nil {
		return fmt.Errorf("invalidate search cache: %w", err)
	}
	s.log.Infow("search cache invalidated")
	return nil
}

// resolveFilters resolves the filter's location slugs to ids. The suburb slug
// participates only when exactly one suburb is supplied; multiple suburbs go
// through the text fallback so each name contributes an OR branch.
func (s *SearchService) resolveFilters(ctx context.Context, filters *PropertyFilters) (loc *LocationIDs, notFound bool, err error) {
	if filters.ProvinceSlug == "" {
		return nil, false, nil
	}

	suburbSlug := ""
	if len(filters.Suburbs) == 1 {
		suburbSlug = filters.Suburbs[0]
	}

	loc, err = s.resolver.LocationIDs(ctx, filters.ProvinceSlug, filters.CitySlug, suburbSlug)
	if errors.Is(err, ErrLocationNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolve location: %w", err)
	}
	return loc, false, nil
}

func (s *SearchService) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}
	return page, pageSize
}

// attachImages fetches every image for the page in one query and groups them
// in memory, keyed by property id.
func (s *SearchService) attachImages(ctx context.Context, items []models.Property) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	var images []models.PropertyImage
	err := s.db.WithContext(ctx).
		Where("property_id IN ?", ids).
		Order("property_id ASC, position ASC").
		Find(&images).Error
	if err != nil {
		return fmt.Errorf("fetch property images: %w", err)
	}

	grouped := make(map[uint][]models.PropertyImage, len(items))
	for _, image := range images {
		grouped[image.PropertyID] = append(grouped[image.PropertyID], image)
	}
	for i := range items {
		items[i].Images = grouped[items[i].ID]
	}
	return nil
}

// cacheKey reduces the canonicalized request tuple to a fixed-width key.
// SHA-256 truncated to 128 bits keeps keys short without the collision risk a
// 32-bit rolling hash would carry.
func (s *SearchService) cacheKey(filters *PropertyFilters, sortOption SortOption, page, pageSize int) string {
	payload, _ := json.Marshal(struct {
		Filters  PropertyFilters `json:"filters"`
		Sort     SortOption      `json:"sort"`
		Page     int             `json:"page"`
		PageSize int             `json:"page_size"`
	}{
		Filters:  canonicalFilters(filters),
		Sort:     sortOption,
		Page:     page,
		PageSize: pageSize,
	})

	sum := sha256.Sum256(payload)
	return searchKeyPrefix + hex.EncodeToString(sum[:16])
}

// canonicalFilters copies the filters with every list sorted so equivalent
// requests hash to the same key regardless of parameter order.
func canonicalFilters(f *PropertyFilters) PropertyFilters {
	if f == nil {
		return PropertyFilters{}
	}
	c := *f
	c.Suburbs = sortedCopy(f.Suburbs)
	c.PropertyTypes = sortedCopy(f.PropertyTypes)
	c.ListingTypes = sortedCopy(f.ListingTypes)
	c.Statuses = sortedCopy(f.Statuses)
	c.LoadShedding = sortedCopy(f.LoadShedding)
	return c
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func (s *SearchService) cacheGet(ctx context.Context, key string) (*SearchResults, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warnw("cache get failed, querying store directly", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var results SearchResults
	if err := json.Unmarshal(payload, &results); err != nil {
		s.log.Warnw("cache entry undecodable, querying store directly", "error", err)
		return nil, false
	}
	return &results, true
}

func (s *SearchService) cacheSet(ctx context.Context, key string, results *SearchResults) {
	payload, err := json.Marshal(results)
	if err != nil {
		s.log.Warnw("cache encode failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
		s.log.Warnw("cache set failed", "error", err)
	}
}

func emptyResults(page, pageSize int) *SearchResults {
	return &SearchResults{
		Items:    []models.Property{},
		Page:     page,
		PageSize: pageSize,
	}
}
