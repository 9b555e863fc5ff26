package coupon

import "strings"

// Catalog is the read-only coupon source. The engine never writes coupons;
// they are seeded by the hosting application or fetched remotely.
type Catalog interface {
	Lookup(code string) (Coupon, bool)
}

type staticCatalog struct {
	byCode map[string]Coupon
}

// NewStaticCatalog builds an in-memory catalog. Codes are matched
// case-insensitively.
func NewStaticCatalog(coupons ...Coupon) Catalog {
	byCode := make(map[string]Coupon, len(coupons))
	for _, c := range coupons {
		byCode[strings.ToUpper(c.Code)] = c
	}
	return &staticCatalog{byCode: byCode}
}

func (s *staticCatalog) Lookup(code string) (Coupon, bool) {
	c, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}
