package models

import (
	"time"
)

// Province represents the top level of the location hierarchy
// DB: provinces
type Province struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:100;not null;index:idx_province_slug" json:"slug"`
	Latitude  *float64  `gorm:"column:latitude;type:double precision" json:"latitude,omitempty"`
	Longitude *float64  `gorm:"column:longitude;type:double precision" json:"longitude,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`

	// Relations
	Cities []City `gorm:"foreignKey:ProvinceID" json:"cities,omitempty"`
}

func (Province) TableName() string {
	return "provinces"
}

// City belongs to exactly one Province
// DB: cities
type City struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProvinceID uint      `gorm:"column:province_id;not null;index:idx_city_province" json:"province_id"`
	Name       string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug       string    `gorm:"column:slug;size:100;not null;index:idx_city_slug" json:"slug"`
	Latitude   *float64  `gorm:"column:latitude;type:double precision" json:"latitude,omitempty"`
	Longitude  *float64  `gorm:"column:longitude;type:double precision" json:"longitude,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`

	// Relations
	Province *Province `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
	Suburbs  []Suburb  `gorm:"foreignKey:CityID" json:"suburbs,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

// Suburb belongs to exactly one City
// DB: suburbs
type Suburb struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CityID    uint      `gorm:"column:city_id;not null;index:idx_suburb_city" json:"city_id"`
	Name      string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:100;not null;index:idx_suburb_slug" json:"slug"`
	Latitude  *float64  `gorm:"column:latitude;type:double precision" json:"latitude,omitempty"`
	Longitude *float64  `gorm:"column:longitude;type:double precision" json:"longitude,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`

	// Relations
	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (Suburb) TableName() string {
	return "suburbs"
}
