package services

import (
	"context"
	"errors"
	"testing"
)

func TestResolveProvinceOnly(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)

	resolved, err := r.Resolve(context.Background(), "gauteng", "", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Level != LevelProvince {
		t.Errorf("Expected level province, got %s", resolved.Level)
	}
	if resolved.Province == nil || resolved.Province.Name != "Gauteng" {
		t.Errorf("Unexpected province: %+v", resolved.Province)
	}
	if resolved.City != nil || resolved.Suburb != nil {
		t.Error("Fields below the resolved level must be nil")
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)

	resolved, err := r.Resolve(context.Background(), "GAUTENG", "Johannesburg", "SANDTON")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Level != LevelSuburb {
		t.Errorf("Expected level suburb, got %s", resolved.Level)
	}
	if resolved.Suburb == nil || resolved.Suburb.Name != "Sandton" {
		t.Errorf("Unexpected suburb: %+v", resolved.Suburb)
	}
}

func TestResolveUnknownProvince(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)

	if _, err := r.Resolve(context.Background(), "free-state", "", ""); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected ErrLocationNotFound, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "", "johannesburg", ""); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected ErrLocationNotFound for empty province, got %v", err)
	}
}

func TestResolveUnknownCityDegradesToProvince(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)

	resolved, err := r.Resolve(context.Background(), "gauteng", "no-such-city", "sandton")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Level != LevelProvince {
		t.Errorf("Expected degradation to province, got %s", resolved.Level)
	}
	if resolved.Province.Slug != "gauteng" {
		t.Errorf("Degradation must keep the resolved province, got %s", resolved.Province.Slug)
	}
	if resolved.City != nil {
		t.Error("City must be nil after degradation")
	}
}

// A city slug that exists globally but under another province must not
// resolve; the parent-id constraint wins over the slug match.
func TestResolveCityContainment(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)

	resolved, err := r.Resolve(context.Background(), "gauteng", "cape-town", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Level != LevelProvince {
		t.Errorf("Expected degradation to province, got %s", resolved.Level)
	}
}

func TestResolveUnknownSuburbDegradesToCity(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)

	resolved, err := r.Resolve(context.Background(), "gauteng", "johannesburg", "sea-point")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Level != LevelCity {
		t.Errorf("Expected degradation to city, got %s", resolved.Level)
	}
	if resolved.City == nil || resolved.City.Slug != "johannesburg" {
		t.Errorf("Degradation must keep the resolved city, got %+v", resolved.City)
	}
	if resolved.Suburb != nil {
		t.Error("Suburb must be nil after degradation")
	}
}

func TestLocationIDsProjection(t *testing.T) {
	db := newTestDB(t)
	_, cities, suburbs := seedHierarchy(t, db)
	r := NewLocationResolver(db)

	ids, err := r.LocationIDs(context.Background(), "gauteng", "johannesburg", "sandton")
	if err != nil {
		t.Fatalf("LocationIDs failed: %v", err)
	}
	if ids.ProvinceID == nil {
		t.Fatal("ProvinceID missing")
	}
	if ids.CityID == nil || *ids.CityID != cities["johannesburg"].ID {
		t.Errorf("Unexpected CityID: %v", ids.CityID)
	}
	if ids.SuburbID == nil || *ids.SuburbID != suburbs["sandton"].ID {
		t.Errorf("Unexpected SuburbID: %v", ids.SuburbID)
	}

	ids, err = r.LocationIDs(context.Background(), "gauteng", "no-such-city", "")
	if err != nil {
		t.Fatalf("LocationIDs failed: %v", err)
	}
	if ids.CityID != nil || ids.SuburbID != nil {
		t.Error("Degraded levels must not contribute ids")
	}
}

func TestEnsureSuburb(t *testing.T) {
	db := newTestDB(t)
	_, cities, _ := seedHierarchy(t, db)
	r := NewLocationResolver(db)
	ctx := context.Background()

	created, err := r.EnsureSuburb(ctx, "gauteng", "johannesburg", "Melville North", "")
	if err != nil {
		t.Fatalf("EnsureSuburb failed: %v", err)
	}
	if created.Slug != "melville-north" {
		t.Errorf("Expected derived slug 'melville-north', got %q", created.Slug)
	}
	if created.CityID != cities["johannesburg"].ID {
		t.Errorf("Suburb created under the wrong city: %d", created.CityID)
	}

	// Second call must return the same row, not insert again
	again, err := r.EnsureSuburb(ctx, "gauteng", "johannesburg", "Melville North", "")
	if err != nil {
		t.Fatalf("EnsureSuburb (second call) failed: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("Expected idempotent upsert, got new ID %d", again.ID)
	}
}

func TestEnsureSuburbParentNotFound(t *testing.T) {
	db := newTestDB(t)
	seedHierarchy(t, db)
	r := NewLocationResolver(db)
	ctx := context.Background()

	if _, err := r.EnsureSuburb(ctx, "gauteng", "no-such-city", "Melville", ""); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("Expected ErrParentNotFound for unknown city, got %v", err)
	}
	if _, err := r.EnsureSuburb(ctx, "no-such-province", "johannesburg", "Melville", ""); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("Expected ErrParentNotFound for unknown province, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sea Point", "sea-point"},
		{"  Mouille   Point ", "mouille-point"},
		{"St. George's Park", "st-georges-park"},
		{"Sandton", "sandton"},
		{"--weird--input--", "weird-input"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
