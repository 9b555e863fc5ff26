package catalog

import (
	"sort"
	"strings"
)

// Result is one page of a catalog query plus enough metadata to render
// pagination controls deterministically.
type Result struct {
	Items      []Product
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// Query runs filter, stable sort and pagination against an immutable product
// collection. The input slice is never mutated.
func Query(products []Product, criteria Criteria, page Page) Result {
	c := criteria.normalized()

	filtered := Filter(products, c)
	Sort(filtered, c)
	return Paginate(filtered, page)
}

// Filter keeps products matching every active predicate. The search query is
// the one disjunctive predicate: it passes when any of name, description,
// category or farmer name contains the query, case-insensitively.
func Filter(products []Product, c Criteria) []Product {
	c = c.normalized()

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !matches(p, c) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p Product, c Criteria) bool {
	if c.Category != "" && !strings.EqualFold(p.Category, c.Category) {
		return false
	}
	if p.Price < c.PriceMin || p.Price > c.PriceMax {
		return false
	}
	if c.Organic && !p.IsOrganic {
		return false
	}
	if c.InStockOnly && !p.InStock {
		return false
	}
	if p.Rating < c.MinRating {
		return false
	}
	if q := strings.TrimSpace(c.Search); q != "" && !matchesSearch(p, q) {
		return false
	}
	return true
}

func matchesSearch(p Product, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{p.Name, p.Description, p.Category, p.Farmer.Name} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Sort orders the slice in place. Every mode uses a stable sort so that
// equal-key products keep their prior relative order; pagination depends on
// that determinism.
func Sort(products []Product, c Criteria) {
	switch c.SortBy {
	case SortPriceLowHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceHighLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case SortNewest:
		// IDs are assigned in insertion order upstream, so a descending ID
		// sort is the recency proxy.
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ID > products[j].ID
		})
	case SortPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return popularity(products[i]) > popularity(products[j])
		})
	case SortRelevance:
		// With an active search, relevance means best-rated first.
		// Without one, the filtered order already is the relevance order.
		if strings.TrimSpace(c.Search) != "" {
			sort.SliceStable(products, func(i, j int) bool {
				return products[i].Rating > products[j].Rating
			})
		}
	}
}

func popularity(p Product) float64 {
	return p.Rating * float64(p.ReviewCount)
}

// Paginate slices the 1-based page out of the collection. Out-of-range pages
// yield an empty item list, never an error.
func Paginate(products []Product, page Page) Result {
	if page.Size <= 0 {
		page.Size = DefaultPageSize
	}
	if page.Number < 1 {
		page.Number = 1
	}

	total := len(products)
	totalPages := (total + page.Size - 1) / page.Size

	start := (page.Number - 1) * page.Size
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}

	items := make([]Product, end-start)
	copy(items, products[start:end])

	return Result{
		Items:      items,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
