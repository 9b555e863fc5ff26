package catalog

// SortBy selects the ordering applied after filtering.
type SortBy string

const (
	SortRelevance    SortBy = "relevance"
	SortPriceLowHigh SortBy = "price_low_high"
	SortPriceHighLow SortBy = "price_high_low"
	SortRating       SortBy = "rating"
	SortNewest       SortBy = "newest"
	SortPopular      SortBy = "popular"
)

const (
	DefaultPageSize = 12
	MaxRating       = 5
)

// Criteria is the full filter/sort state of a catalog view.
type Criteria struct {
	Category    string
	PriceMin    float64
	PriceMax    float64
	Organic     bool
	InStockOnly bool
	MinRating   float64
	Search      string
	SortBy      SortBy
}

// CriteriaPatch is a partial update; nil fields keep their current value.
type CriteriaPatch struct {
	Category    *string
	PriceMin    *float64
	PriceMax    *float64
	Organic     *bool
	InStockOnly *bool
	MinRating   *float64
	Search      *string
	SortBy      *SortBy
}

// DefaultCriteria matches every product and preserves catalog order.
func DefaultCriteria() Criteria {
	return Criteria{
		PriceMin: 0,
		PriceMax: maxPrice,
		SortBy:   SortRelevance,
	}
}

// maxPrice is the open upper bound used when no maximum was requested.
const maxPrice = float64(1 << 40)

// normalized repairs malformed inputs rather than rejecting them: an unset
// price ceiling opens the range, an inverted price range is swapped and the
// rating floor is clamped into [0, 5]. A zero-value Criteria therefore
// matches every product.
func (c Criteria) normalized() Criteria {
	if c.PriceMax <= 0 {
		c.PriceMax = maxPrice
	}
	if c.PriceMin > c.PriceMax {
		c.PriceMin, c.PriceMax = c.PriceMax, c.PriceMin
	}
	if c.MinRating < 0 {
		c.MinRating = 0
	}
	if c.MinRating > MaxRating {
		c.MinRating = MaxRating
	}
	if c.SortBy == "" {
		c.SortBy = SortRelevance
	}
	return c
}

func (c Criteria) apply(p CriteriaPatch) Criteria {
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.PriceMin != nil {
		c.PriceMin = *p.PriceMin
	}
	if p.PriceMax != nil {
		c.PriceMax = *p.PriceMax
	}
	if p.Organic != nil {
		c.Organic = *p.Organic
	}
	if p.InStockOnly != nil {
		c.InStockOnly = *p.InStockOnly
	}
	if p.MinRating != nil {
		c.MinRating = *p.MinRating
	}
	if p.Search != nil {
		c.Search = *p.Search
	}
	if p.SortBy != nil {
		c.SortBy = *p.SortBy
	}
	return c
}

// Page is a 1-based slice of the filtered, sorted collection.
type Page struct {
	Number int
	Size   int
}
