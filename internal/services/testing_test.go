package services

import (
	"testing"
	"time"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/database"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	err = gdb.AutoMigrate(
		&models.Province{},
		&models.City{},
		&models.Suburb{},
		&models.Property{},
		&models.PropertyImage{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return &database.DB{DB: gdb}
}

// seedHierarchy inserts a small Province→City→Suburb tree and returns it
// keyed by slug.
func seedHierarchy(t *testing.T, db *database.DB) (map[string]models.Province, map[string]models.City, map[string]models.Suburb) {
	t.Helper()

	provinces := map[string]models.Province{}
	for _, p := range []models.Province{
		{Name: "Gauteng", Slug: "gauteng"},
		{Name: "Western Cape", Slug: "western-cape"},
		{Name: "KwaZulu-Natal", Slug: "kwazulu-natal"},
	} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed province %s: %v", p.Slug, err)
		}
		provinces[p.Slug] = p
	}

	cities := map[string]models.City{}
	for _, c := range []models.City{
		{ProvinceID: provinces["gauteng"].ID, Name: "Johannesburg", Slug: "johannesburg"},
		{ProvinceID: provinces["gauteng"].ID, Name: "Pretoria", Slug: "pretoria"},
		{ProvinceID: provinces["western-cape"].ID, Name: "Cape Town", Slug: "cape-town"},
		{ProvinceID: provinces["kwazulu-natal"].ID, Name: "Durban", Slug: "durban"},
	} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed city %s: %v", c.Slug, err)
		}
		cities[c.Slug] = c
	}

	suburbs := map[string]models.Suburb{}
	for _, s := range []models.Suburb{
		{CityID: cities["johannesburg"].ID, Name: "Sandton", Slug: "sandton"},
		{CityID: cities["johannesburg"].ID, Name: "Rosebank", Slug: "rosebank"},
		{CityID: cities["cape-town"].ID, Name: "Sea Point", Slug: "sea-point"},
	} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed suburb %s: %v", s.Slug, err)
		}
		suburbs[s.Slug] = s
	}

	return provinces, cities, suburbs
}

func ptr[T any](v T) *T {
	return &v
}

// seedProperty inserts one published listing with sensible defaults.
func seedProperty(t *testing.T, db *database.DB, p models.Property) models.Property {
	t.Helper()

	if p.Status == "" {
		p.Status = models.StatusPublished
	}
	if p.Title == "" {
		p.Title = "Test listing"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}
