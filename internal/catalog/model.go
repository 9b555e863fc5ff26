package catalog

// Farmer identifies the producer a product is sourced from.
type Farmer struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Category      string   `json:"category"`
	Farmer        Farmer   `json:"farmer"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	InStock       bool     `json:"in_stock"`
	IsOrganic     bool     `json:"is_organic"`
	Unit          string   `json:"unit"`
	Images        []string `json:"images,omitempty"`
}

// Image returns the primary product image, or "" when none was ingested.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
