package services

// SortOption is the closed set of orderings a search accepts.
type SortOption string

const (
	SortPriceAsc     SortOption = "price_asc"
	SortPriceDesc    SortOption = "price_desc"
	SortDateAsc      SortOption = "date_asc"
	SortDateDesc     SortOption = "date_desc"
	SortLocationAsc  SortOption = "location_asc"
	SortLocationDesc SortOption = "location_desc"
)

// OrderBy is a concrete (column, direction) ordering.
type OrderBy struct {
	Column     string
	Descending bool
}

// Clause renders the ordering for the page query.
func (o OrderBy) Clause() string {
	if o.Descending {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

var sortOrders = map[SortOption]OrderBy{
	SortPriceAsc:     {Column: "price"},
	SortPriceDesc:    {Column: "price", Descending: true},
	SortDateAsc:      {Column: "created_at"},
	SortDateDesc:     {Column: "created_at", Descending: true},
	SortLocationAsc:  {Column: "city"},
	SortLocationDesc: {Column: "city", Descending: true},
}

// BuildSort maps a sort option to its ordering. Anything unrecognized,
// including the empty string, defaults to newest-first.
func BuildSort(option SortOption) OrderBy {
	if order, ok := sortOrders[option]; ok {
		return order
	}
	return sortOrders[SortDateDesc]
}
