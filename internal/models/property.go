package models

import (
	"time"

	"gorm.io/gorm"
)

// Stored status tokens for properties.
const (
	StatusPublished    = "published"
	StatusOfferPending = "offer_pending"
	StatusSold         = "sold"
	StatusRented       = "rented"
	StatusDraft        = "draft"
	StatusArchived     = "archived"
)

// Property represents a listing on the portal. Legacy rows carry only the
// free-text address/city/province columns; migrated rows also carry the
// normalized province/city/suburb foreign keys.
// DB: properties
type Property struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Title        string  `gorm:"column:title;type:text;not null" json:"title"`
	Status       string  `gorm:"column:status;size:20;not null;default:published;index:idx_property_status" json:"status"`
	Price        int64   `gorm:"column:price;not null;index:idx_property_price" json:"price"`
	PropertyType string  `gorm:"column:property_type;size:50;index:idx_property_type" json:"property_type"`
	ListingType  string  `gorm:"column:listing_type;size:20" json:"listing_type"`
	Bedrooms     *int    `gorm:"column:bedrooms" json:"bedrooms,omitempty"`
	Bathrooms    *float64 `gorm:"column:bathrooms" json:"bathrooms,omitempty"`
	ErfSize      *float64 `gorm:"column:erf_size" json:"erf_size,omitempty"`
	FloorSize    *float64 `gorm:"column:floor_size" json:"floor_size,omitempty"`

	// Legacy free-text location columns
	Address      *string `gorm:"column:address;type:text" json:"address,omitempty"`
	CityName     *string `gorm:"column:city;size:100" json:"city,omitempty"`
	ProvinceName *string `gorm:"column:province;size:100" json:"province,omitempty"`

	// Normalized location foreign keys (nullable for legacy rows)
	ProvinceID *uint `gorm:"column:province_id;index:idx_property_province" json:"province_id,omitempty"`
	CityID     *uint `gorm:"column:city_id;index:idx_property_city" json:"city_id,omitempty"`
	SuburbID   *uint `gorm:"column:suburb_id;index:idx_property_suburb" json:"suburb_id,omitempty"`

	Latitude  *float64 `gorm:"column:latitude;type:double precision" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude;type:double precision" json:"longitude,omitempty"`

	// SA-specific columns, nullable until the backfill migration lands
	TitleType      *string `gorm:"column:title_type;size:20" json:"title_type,omitempty"`
	SecurityEstate *bool   `gorm:"column:security_estate" json:"security_estate,omitempty"`
	PetFriendly    *bool   `gorm:"column:pet_friendly" json:"pet_friendly,omitempty"`
	FibreReady     *bool   `gorm:"column:fibre_ready" json:"fibre_ready,omitempty"`
	// Comma-separated solution tokens, e.g. "inverter,solar"
	LoadShedding *string `gorm:"column:load_shedding;size:100" json:"load_shedding,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;not null;index:idx_property_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index:idx_property_deleted" json:"deleted_at,omitempty"`

	// Relations
	Images []PropertyImage `gorm:"foreignKey:PropertyID" json:"images,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyImage represents a listing photo
// DB: property_images
type PropertyImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"column:property_id;not null;index:idx_image_property" json:"property_id"`
	URL        string    `gorm:"column:url;type:text;not null" json:"url"`
	Position   int       `gorm:"column:position;not null;default:0" json:"position"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

func (PropertyImage) TableName() string {
	return "property_images"
}
