package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"freshcart/internal/logger"

	"go.uber.org/zap"
)

// RawProduct is the loose wire shape the remote catalog serves. Upstream data
// is inconsistent: "farmer" arrives either as a plain name string or as a
// {name, verified} object, and several numeric fields are optional.
type RawProduct struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	OriginalPrice *float64        `json:"original_price"`
	Category      string          `json:"category"`
	Farmer        json.RawMessage `json:"farmer"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"review_count"`
	InStock       bool            `json:"in_stock"`
	IsOrganic     bool            `json:"is_organic"`
	Unit          string          `json:"unit"`
	Images        []string        `json:"images"`
}

// Normalize converts a raw record into the strict Product schema. Records that
// violate the schema are rejected here so downstream code never branches on
// shape.
func Normalize(raw RawProduct) (Product, error) {
	switch {
	case raw.ID <= 0:
		return Product{}, ErrMissingID
	case strings.TrimSpace(raw.Name) == "":
		return Product{}, ErrMissingName
	case raw.Price <= 0:
		return Product{}, ErrInvalidPrice
	case raw.OriginalPrice != nil && *raw.OriginalPrice <= raw.Price:
		return Product{}, ErrInvalidOriginal
	case raw.Rating < 0 || raw.Rating > 5:
		return Product{}, ErrInvalidRating
	case raw.ReviewCount < 0:
		return Product{}, ErrInvalidReviews
	}

	farmer, err := parseFarmer(raw.Farmer)
	if err != nil {
		return Product{}, err
	}

	return Product{
		ID:            raw.ID,
		Name:          strings.TrimSpace(raw.Name),
		Description:   raw.Description,
		Price:         raw.Price,
		OriginalPrice: raw.OriginalPrice,
		Category:      raw.Category,
		Farmer:        farmer,
		Rating:        raw.Rating,
		ReviewCount:   raw.ReviewCount,
		InStock:       raw.InStock,
		IsOrganic:     raw.IsOrganic,
		Unit:          raw.Unit,
		Images:        raw.Images,
	}, nil
}

// NormalizeAll ingests a batch, dropping malformed records with a warning
// instead of failing the whole load.
func NormalizeAll(raws []RawProduct) []Product {
	products := make([]Product, 0, len(raws))
	for _, raw := range raws {
		p, err := Normalize(raw)
		if err != nil {
			logger.L().Warn("dropping malformed product record",
				zap.Int("id", raw.ID),
				zap.String("name", raw.Name),
				zap.Error(err),
			)
			continue
		}
		products = append(products, p)
	}
	return products
}

func parseFarmer(raw json.RawMessage) (Farmer, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Farmer{}, nil
	}

	// Legacy records carry the farmer as a bare name string.
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return Farmer{Name: name}, nil
	}

	var farmer Farmer
	if err := json.Unmarshal(raw, &farmer); err != nil {
		return Farmer{}, fmt.Errorf("malformed farmer field: %w", err)
	}
	return farmer, nil
}
