package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/cache"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/database"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/models"
)

func newSearchService(db *database.DB, store cache.Store) *SearchService {
	return NewSearchService(db, store, NewLocationResolver(db), SearchConfig{
		CacheTTL: time.Minute,
		Timeout:  5 * time.Second,
	})
}

// seedSearchFixtures inserts three Gauteng listings inside the R1M-R3M range
// plus one Western Cape and one KwaZulu-Natal listing outside it.
func seedSearchFixtures(t *testing.T, db *database.DB) {
	t.Helper()
	_, cities, _ := seedHierarchy(t, db)

	jhb := cities["johannesburg"]
	cpt := cities["cape-town"]
	dbn := cities["durban"]

	seedProperty(t, db, models.Property{
		Title: "Rosebank apartment", Price: 1_200_000, PropertyType: "apartment",
		ProvinceID: ptr(jhb.ProvinceID), CityID: ptr(jhb.ID),
	})
	seedProperty(t, db, models.Property{
		Title: "Midrand townhouse", Price: 1_800_000, PropertyType: "townhouse",
		ProvinceID: ptr(jhb.ProvinceID), CityID: ptr(jhb.ID),
	})
	seedProperty(t, db, models.Property{
		Title: "Sandton house", Price: 2_500_000, PropertyType: "house",
		ProvinceID: ptr(jhb.ProvinceID), CityID: ptr(jhb.ID),
	})
	seedProperty(t, db, models.Property{
		Title: "Clifton villa", Price: 5_000_000, PropertyType: "house",
		ProvinceID: ptr(cpt.ProvinceID), CityID: ptr(cpt.ID),
	})
	seedProperty(t, db, models.Property{
		Title: "Umhlanga penthouse", Price: 8_000_000, PropertyType: "apartment",
		ProvinceID: ptr(dbn.ProvinceID), CityID: ptr(dbn.ID),
	})
}

func TestSearchPriceRangeInProvince(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())
	ctx := context.Background()

	filters := &PropertyFilters{
		ProvinceSlug: "gauteng",
		MinPrice:     ptr(int64(1_000_000)),
		MaxPrice:     ptr(int64(3_000_000)),
	}

	results, err := svc.Search(ctx, filters, SortPriceAsc, 1, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if results.Total != 3 {
		t.Errorf("Total = %d, want 3", results.Total)
	}
	if len(results.Items) != 2 {
		t.Fatalf("Page 1 items = %d, want 2", len(results.Items))
	}
	if results.Items[0].Price != 1_200_000 || results.Items[1].Price != 1_800_000 {
		t.Errorf("Expected the two cheapest in ascending order, got %d, %d",
			results.Items[0].Price, results.Items[1].Price)
	}
	if !results.HasMore {
		t.Error("HasMore must be true when a third match remains")
	}

	page2, err := svc.Search(ctx, filters, SortPriceAsc, 2, 2)
	if err != nil {
		t.Fatalf("Search (page 2) failed: %v", err)
	}
	if len(page2.Items) != 1 || page2.Items[0].Price != 2_500_000 {
		t.Errorf("Page 2 must carry the last match, got %+v", page2.Items)
	}
	if page2.HasMore {
		t.Error("HasMore must be false on the last page")
	}

	// A page past the end is an empty page, not an error
	page3, err := svc.Search(ctx, filters, SortPriceAsc, 3, 2)
	if err != nil {
		t.Fatalf("Search (page 3) failed: %v", err)
	}
	if len(page3.Items) != 0 || page3.HasMore {
		t.Errorf("Page past the end must be empty with HasMore=false, got %+v", page3)
	}
	if page3.Total != 3 {
		t.Errorf("Total must stay accurate past the end, got %d", page3.Total)
	}
}

func TestSearchTotalMatchesItemsOnSinglePage(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	results, err := svc.Search(context.Background(), &PropertyFilters{}, SortDateDesc, 1, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results.Total != int64(len(results.Items)) {
		t.Errorf("Total = %d but %d items returned", results.Total, len(results.Items))
	}
	if results.Total != 5 {
		t.Errorf("Total = %d, want 5", results.Total)
	}
	if results.HasMore {
		t.Error("HasMore must be false when everything fits on one page")
	}
}

func TestSearchSortDescending(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	results, err := svc.Search(context.Background(), &PropertyFilters{}, SortPriceDesc, 1, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i := 1; i < len(results.Items); i++ {
		if results.Items[i].Price > results.Items[i-1].Price {
			t.Fatalf("Results out of order at %d: %d after %d",
				i, results.Items[i].Price, results.Items[i-1].Price)
		}
	}
}

func TestSearchExcludesDraftsByDefault(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	seedProperty(t, db, models.Property{Title: "Live", Price: 900_000})
	seedProperty(t, db, models.Property{Title: "Pending", Price: 950_000, Status: models.StatusOfferPending})
	seedProperty(t, db, models.Property{Title: "Draft", Price: 980_000, Status: models.StatusDraft})
	seedProperty(t, db, models.Property{Title: "Gone", Price: 990_000, Status: models.StatusSold})

	results, err := svc.Search(context.Background(), &PropertyFilters{}, SortPriceAsc, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results.Total != 2 {
		t.Errorf("Default visibility must keep published and offer_pending only, got %d", results.Total)
	}

	sold, err := svc.Search(context.Background(), &PropertyFilters{Statuses: []string{"sold"}}, SortPriceAsc, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if sold.Total != 1 {
		t.Errorf("Explicit status filter must override the default, got %d", sold.Total)
	}
}

func TestSearchUnknownProvinceReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	results, err := svc.Search(context.Background(), &PropertyFilters{ProvinceSlug: "narnia"}, SortDateDesc, 1, 10)
	if err != nil {
		t.Fatalf("Unknown province must not be an error: %v", err)
	}
	if results.Total != 0 || len(results.Items) != 0 {
		t.Errorf("Unknown province must produce an empty page, got %+v", results)
	}
}

func TestSearchLegacyCityTextFallback(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	// Legacy row: free-text city only, no foreign keys
	seedProperty(t, db, models.Property{
		Title: "Benoni family home", Price: 1_500_000,
		CityName: ptr("Benoni"), ProvinceName: ptr("Gauteng"),
	})
	seedProperty(t, db, models.Property{
		Title: "Boksburg family home", Price: 1_400_000,
		CityName: ptr("Boksburg"), ProvinceName: ptr("Gauteng"),
	})

	results, err := svc.Search(context.Background(), &PropertyFilters{CitySlug: "benoni"}, SortDateDesc, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results.Total != 1 {
		t.Fatalf("Expected the legacy text match only, got %d", results.Total)
	}
	if results.Items[0].Title != "Benoni family home" {
		t.Errorf("Wrong row matched: %s", results.Items[0].Title)
	}
}

func TestSearchCachedResultSurvivesNewWrites(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())
	ctx := context.Background()

	filters := &PropertyFilters{ProvinceSlug: "gauteng"}

	first, err := svc.Search(ctx, filters, SortDateDesc, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if first.Total != 3 {
		t.Fatalf("Total = %d, want 3", first.Total)
	}

	// A write without invalidation is invisible until the TTL lapses
	seedProperty(t, db, models.Property{
		Title: "New Gauteng listing", Price: 2_000_000,
		ProvinceID: first.Items[0].ProvinceID,
	})

	second, err := svc.Search(ctx, filters, SortDateDesc, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if second.Total != 3 {
		t.Errorf("Identical query within the TTL must be served from cache, got total %d", second.Total)
	}

	if err := svc.InvalidateCache(ctx); err != nil {
		t.Fatalf("InvalidateCache failed: %v", err)
	}

	third, err := svc.Search(ctx, filters, SortDateDesc, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if third.Total != 4 {
		t.Errorf("Post-invalidation query must see the new write, got total %d", third.Total)
	}
}

// brokenStore fails every operation, standing in for an unreachable redis.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) DeleteByPrefix(context.Context, string) error {
	return errors.New("connection refused")
}

func TestSearchDegradesWhenCacheDown(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, brokenStore{})

	results, err := svc.Search(context.Background(), &PropertyFilters{ProvinceSlug: "gauteng"}, SortDateDesc, 1, 10)
	if err != nil {
		t.Fatalf("A cache outage must not fail the search: %v", err)
	}
	if results.Total != 3 {
		t.Errorf("Total = %d, want 3", results.Total)
	}
}

func TestSearchNormalizesPaging(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	results, err := svc.Search(context.Background(), nil, SortDateDesc, 0, -5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results.Page != 1 {
		t.Errorf("Page normalized to %d, want 1", results.Page)
	}
	if results.PageSize != 12 {
		t.Errorf("PageSize normalized to %d, want the default 12", results.PageSize)
	}

	capped, err := svc.Search(context.Background(), nil, SortDateDesc, 1, 10_000)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if capped.PageSize != 100 {
		t.Errorf("PageSize capped to %d, want 100", capped.PageSize)
	}
}

func TestGetByIDAttachesOrderedImages(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	p := seedProperty(t, db, models.Property{Title: "With photos", Price: 1_000_000})
	for _, img := range []models.PropertyImage{
		{PropertyID: p.ID, URL: "https://cdn.example/2.jpg", Position: 2},
		{PropertyID: p.ID, URL: "https://cdn.example/0.jpg", Position: 0, IsPrimary: true},
		{PropertyID: p.ID, URL: "https://cdn.example/1.jpg", Position: 1},
	} {
		if err := db.Create(&img).Error; err != nil {
			t.Fatalf("seed image: %v", err)
		}
	}

	got, err := svc.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(got.Images))
	}
	for i, img := range got.Images {
		if img.Position != i {
			t.Errorf("Image %d has position %d, want %d", i, img.Position, i)
		}
	}
}

func TestFilterCounts(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	counts, err := svc.FilterCounts(context.Background(), &PropertyFilters{ProvinceSlug: "gauteng"})
	if err != nil {
		t.Fatalf("FilterCounts failed: %v", err)
	}

	wantTypes := map[string]int64{"apartment": 1, "townhouse": 1, "house": 1}
	for typ, want := range wantTypes {
		if counts.ByPropertyType[typ] != want {
			t.Errorf("ByPropertyType[%s] = %d, want %d", typ, counts.ByPropertyType[typ], want)
		}
	}

	wantBands := map[string]int64{
		"Under R1M": 0,
		"R1M - R2M": 2,
		"R2M - R3M": 1,
		"R3M - R5M": 0,
		"Over R5M":  0,
	}
	if len(counts.ByPriceBand) != len(wantBands) {
		t.Fatalf("Expected %d bands, got %d", len(wantBands), len(counts.ByPriceBand))
	}
	for _, band := range counts.ByPriceBand {
		if band.Count != wantBands[band.Label] {
			t.Errorf("Band %q = %d, want %d", band.Label, band.Count, wantBands[band.Label])
		}
	}
}

func TestFilterCountsClearsOwnDimension(t *testing.T) {
	db := newTestDB(t)
	seedSearchFixtures(t, db)
	svc := newSearchService(db, cache.NewMemoryStore())

	// A type filter must not narrow the type counts, and a price filter must
	// not narrow the band counts, or the facet UI would collapse to one choice.
	counts, err := svc.FilterCounts(context.Background(), &PropertyFilters{
		ProvinceSlug:  "gauteng",
		PropertyTypes: []string{"house"},
		MinPrice:      ptr(int64(2_000_000)),
	})
	if err != nil {
		t.Fatalf("FilterCounts failed: %v", err)
	}

	// Price filter still applies to type counts: only the 2.5M house remains
	if counts.ByPropertyType["house"] != 1 {
		t.Errorf("ByPropertyType[house] = %d, want 1", counts.ByPropertyType["house"])
	}
	if counts.ByPropertyType["apartment"] != 0 {
		t.Errorf("ByPropertyType[apartment] = %d, want 0", counts.ByPropertyType["apartment"])
	}

	// Type filter still applies to band counts: only the house contributes
	want := map[string]int64{"R2M - R3M": 1}
	for _, band := range counts.ByPriceBand {
		if band.Count != want[band.Label] {
			t.Errorf("Band %q = %d, want %d", band.Label, band.Count, want[band.Label])
		}
	}
}

func TestCacheKeyCanonicalization(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db, cache.NewMemoryStore())

	a := &PropertyFilters{Suburbs: []string{"sandton", "rosebank"}, PropertyTypes: []string{"house", "apartment"}}
	b := &PropertyFilters{Suburbs: []string{"rosebank", "sandton"}, PropertyTypes: []string{"apartment", "house"}}

	keyA := svc.cacheKey(a, SortPriceAsc, 1, 12)
	keyB := svc.cacheKey(b, SortPriceAsc, 1, 12)
	if keyA != keyB {
		t.Error("Equivalent filters with reordered lists must share a cache key")
	}

	if svc.cacheKey(a, SortPriceAsc, 2, 12) == keyA {
		t.Error("A different page must produce a different cache key")
	}
	if svc.cacheKey(a, SortPriceDesc, 1, 12) == keyA {
		t.Error("A different sort must produce a different cache key")
	}

	if len(keyA) != len(searchKeyPrefix)+32 {
		t.Errorf("Key %q must be the prefix plus 32 hex chars", keyA)
	}
}
