package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/models"
	"gorm.io/gorm"
)

// ErrInvalidBounds is returned for a bounds rectangle with inverted edges.
var ErrInvalidBounds = errors.New("invalid bounds: north must exceed south and east must exceed west")

// Bounds is a rectangular map viewport.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// PropertyFilters is the open record of optional search criteria. No field is
// required; the zero value matches every publicly visible listing.
type PropertyFilters struct {
	ProvinceSlug string   `json:"province,omitempty"`
	CitySlug     string   `json:"city,omitempty"`
	Suburbs      []string `json:"suburbs,omitempty"`

	PropertyTypes []string `json:"property_types,omitempty"`
	ListingTypes  []string `json:"listing_types,omitempty"`
	Statuses      []string `json:"statuses,omitempty"`

	MinPrice     *int64   `json:"min_price,omitempty"`
	MaxPrice     *int64   `json:"max_price,omitempty"`
	MinBedrooms  *int     `json:"min_bedrooms,omitempty"`
	MaxBedrooms  *int     `json:"max_bedrooms,omitempty"`
	MinBathrooms *float64 `json:"min_bathrooms,omitempty"`
	MaxBathrooms *float64 `json:"max_bathrooms,omitempty"`
	MinErfSize   *float64 `json:"min_erf_size,omitempty"`
	MaxErfSize   *float64 `json:"max_erf_size,omitempty"`
	MinFloorSize *float64 `json:"min_floor_size,omitempty"`
	MaxFloorSize *float64 `json:"max_floor_size,omitempty"`

	TitleType      *string  `json:"title_type,omitempty"`
	SecurityEstate *bool    `json:"security_estate,omitempty"`
	PetFriendly    *bool    `json:"pet_friendly,omitempty"`
	FibreReady     *bool    `json:"fibre_ready,omitempty"`
	LoadShedding   []string `json:"load_shedding,omitempty"`

	Bounds *Bounds `json:"bounds,omitempty"`
}

// PredicateKind tags a predicate with how it compares.
type PredicateKind int

const (
	// PredEquals is an exact equality match.
	PredEquals PredicateKind = iota
	// PredIEquals is a case-insensitive equality match on a text column.
	PredIEquals
	// PredIn is set membership.
	PredIn
	// PredGTE and PredLTE are inclusive range bounds.
	PredGTE
	PredLTE
	// PredContains is a case-insensitive substring match.
	PredContains
	// PredAnyOf is an OR group over child predicates.
	PredAnyOf
)

// Predicate is one independently testable condition. The full predicate list
// is combined with AND; PredAnyOf combines its children with OR.
type Predicate struct {
	Kind   PredicateKind
	Column string
	Value  any
	Values []any
	Any    []Predicate
}

func equals(column string, value any) Predicate {
	return Predicate{Kind: PredEquals, Column: column, Value: value}
}

func iEquals(column, value string) Predicate {
	return Predicate{Kind: PredIEquals, Column: column, Value: value}
}

func in(column string, values []any) Predicate {
	return Predicate{Kind: PredIn, Column: column, Values: values}
}

func gte(column string, value any) Predicate {
	return Predicate{Kind: PredGTE, Column: column, Value: value}
}

func lte(column string, value any) Predicate {
	return Predicate{Kind: PredLTE, Column: column, Value: value}
}

func contains(column, value string) Predicate {
	return Predicate{Kind: PredContains, Column: column, Value: value}
}

func anyOf(preds ...Predicate) Predicate {
	return Predicate{Kind: PredAnyOf, Any: preds}
}

// Clause renders the predicate as a parameterized SQL fragment. LOWER(...) is
// used rather than ILIKE so the same fragment runs on postgres and on the
// sqlite used in tests.
func (p Predicate) Clause() (string, []any) {
	switch p.Kind {
	case PredEquals:
		return p.Column + " = ?", []any{p.Value}
	case PredIEquals:
		return "LOWER(" + p.Column + ") = ?", []any{strings.ToLower(fmt.Sprint(p.Value))}
	case PredIn:
		return p.Column + " IN ?", []any{p.Values}
	case PredGTE:
		return p.Column + " >= ?", []any{p.Value}
	case PredLTE:
		return p.Column + " <= ?", []any{p.Value}
	case PredContains:
		return "LOWER(" + p.Column + ") LIKE ?", []any{"%" + strings.ToLower(fmt.Sprint(p.Value)) + "%"}
	case PredAnyOf:
		clauses := make([]string, 0, len(p.Any))
		var args []any
		for _, child := range p.Any {
			clause, childArgs := child.Clause()
			clauses = append(clauses, clause)
			args = append(args, childArgs...)
		}
		return "(" + strings.Join(clauses, " OR ") + ")", args
	}
	return "1 = 1", nil
}

// ApplyPredicates is a GORM scope attaching every predicate as an AND'd Where.
// The count query and the page query share the same scope so they can never
// diverge.
func ApplyPredicates(preds []Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range preds {
			clause, args := p.Clause()
			db = db.Where(clause, args...)
		}
		return db
	}
}

// DefaultVisibleStatuses restricts searches when the caller sends no status
// filter of their own.
var DefaultVisibleStatuses = []string{models.StatusPublished, models.StatusOfferPending}

// statusAliases translates the logical status tokens the clients send into
// stored tokens. Unknown values pass through unchanged.
var statusAliases = map[string]string{
	"available":   models.StatusPublished,
	"active":      models.StatusPublished,
	"under_offer": models.StatusOfferPending,
	"let":         models.StatusRented,
}

// MapStatus translates one logical status token to its stored form.
func MapStatus(status string) string {
	if mapped, ok := statusAliases[strings.ToLower(status)]; ok {
		return mapped
	}
	return status
}

// slugToText turns a slug back into matchable free text ("western-cape" →
// "western cape") for the legacy columns that store display names.
func slugToText(slug string) string {
	return strings.ReplaceAll(strings.TrimSpace(slug), "-", " ")
}

// BuildConditions converts filters plus any resolved location ids into the
// predicate list for both the count and page queries.
//
// Location matching is hybrid: a resolved id gives an exact foreign-key
// equality; without one, the raw slug falls back to a case-insensitive match
// against the legacy free-text columns. Suburb fallback is a substring match
// against the combined address field, OR'd across all supplied names, since
// legacy rows have no normalized suburb column.
func BuildConditions(f *PropertyFilters, loc *LocationIDs) ([]Predicate, error) {
	if f == nil {
		f = &PropertyFilters{}
	}

	var preds []Predicate

	// Visibility
	if len(f.Statuses) > 0 {
		statuses := make([]any, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, MapStatus(s))
		}
		preds = append(preds, in("status", statuses))
	} else {
		statuses := make([]any, 0, len(DefaultVisibleStatuses))
		for _, s := range DefaultVisibleStatuses {
			statuses = append(statuses, s)
		}
		preds = append(preds, in("status", statuses))
	}

	// Location: id when resolved, text fallback otherwise
	if loc != nil && loc.ProvinceID != nil {
		preds = append(preds, equals("province_id", *loc.ProvinceID))
	} else if f.ProvinceSlug != "" {
		preds = append(preds, iEquals("province", slugToText(f.ProvinceSlug)))
	}

	if loc != nil && loc.CityID != nil {
		preds = append(preds, equals("city_id", *loc.CityID))
	} else if f.CitySlug != "" {
		preds = append(preds, iEquals("city", slugToText(f.CitySlug)))
	}

	if loc != nil && loc.SuburbID != nil {
		preds = append(preds, equals("suburb_id", *loc.SuburbID))
	} else if len(f.Suburbs) > 0 {
		matches := make([]Predicate, 0, len(f.Suburbs))
		for _, suburb := range f.Suburbs {
			matches = append(matches, contains("address", slugToText(suburb)))
		}
		preds = append(preds, anyOf(matches...))
	}

	// Type sets
	if len(f.PropertyTypes) > 0 {
		preds = append(preds, in("property_type", toAnySlice(f.PropertyTypes)))
	}
	if len(f.ListingTypes) > 0 {
		preds = append(preds, in("listing_type", toAnySlice(f.ListingTypes)))
	}

	// Ranges, each bound independent and inclusive
	if f.MinPrice != nil {
		preds = append(preds, gte("price", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		preds = append(preds, lte("price", *f.MaxPrice))
	}
	if f.MinBedrooms != nil {
		preds = append(preds, gte("bedrooms", *f.MinBedrooms))
	}
	if f.MaxBedrooms != nil {
		preds = append(preds, lte("bedrooms", *f.MaxBedrooms))
	}
	if f.MinBathrooms != nil {
		preds = append(preds, gte("bathrooms", *f.MinBathrooms))
	}
	if f.MaxBathrooms != nil {
		preds = append(preds, lte("bathrooms", *f.MaxBathrooms))
	}
	if f.MinErfSize != nil {
		preds = append(preds, gte("erf_size", *f.MinErfSize))
	}
	if f.MaxErfSize != nil {
		preds = append(preds, lte("erf_size", *f.MaxErfSize))
	}
	if f.MinFloorSize != nil {
		preds = append(preds, gte("floor_size", *f.MinFloorSize))
	}
	if f.MaxFloorSize != nil {
		preds = append(preds, lte("floor_size", *f.MaxFloorSize))
	}

	// SA-specific flags
	if f.TitleType != nil {
		preds = append(preds, equals("title_type", *f.TitleType))
	}
	if f.SecurityEstate != nil {
		preds = append(preds, equals("security_estate", *f.SecurityEstate))
	}
	if f.PetFriendly != nil {
		preds = append(preds, equals("pet_friendly", *f.PetFriendly))
	}
	if f.FibreReady != nil {
		preds = append(preds, equals("fibre_ready", *f.FibreReady))
	}
	if len(f.LoadShedding) > 0 {
		matches := make([]Predicate, 0, len(f.LoadShedding))
		for _, solution := range f.LoadShedding {
			matches = append(matches, contains("load_shedding", solution))
		}
		preds = append(preds, anyOf(matches...))
	}

	// Map viewport
	if f.Bounds != nil {
		if f.Bounds.North <= f.Bounds.South || f.Bounds.East <= f.Bounds.West {
			return nil, ErrInvalidBounds
		}
		preds = append(preds,
			lte("latitude", f.Bounds.North),
			gte("latitude", f.Bounds.South),
			lte("longitude", f.Bounds.East),
			gte("longitude", f.Bounds.West),
		)
	}

	return preds, nil
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
