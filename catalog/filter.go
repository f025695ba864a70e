// Package catalog filters the public product listing and edits the nested
// collections of a product.
package catalog

import (
	"math"
	"sort"

	"github.com/princinho/climaquote/models"
)

// All matches every value of a criterion.
const All = "all"

// CeilingMargin is added on top of the rounded maximum base price so the
// price slider never starts pinned at its upper bound.
const CeilingMargin = 500

type Criteria struct {
	Type     string  `json:"type" form:"type"`
	Brand    string  `json:"brand" form:"brand"`
	MaxPrice float64 `json:"maxPrice" form:"maxPrice"`
}

// BasePrice is the cheapest pricing option, 0 when the product has none.
func BasePrice(p models.Product) float64 {
	if len(p.PricingOptions) == 0 {
		return 0
	}
	min := p.PricingOptions[0].Price
	for _, o := range p.PricingOptions[1:] {
		if o.Price < min {
			min = o.Price
		}
	}
	return min
}

func Ceiling(products []models.Product) float64 {
	var max float64
	for _, p := range products {
		if b := BasePrice(p); b > max {
			max = b
		}
	}
	return math.Ceil(max/100)*100 + CeilingMargin
}

func (c Criteria) Matches(p models.Product) bool {
	if c.Type != "" && c.Type != All && p.Type != c.Type {
		return false
	}
	if c.Brand != "" && c.Brand != All && p.Brand != c.Brand {
		return false
	}
	return BasePrice(p) <= c.MaxPrice
}

// Filter keeps the products matching c in their input order.
func Filter(products []models.Product, c Criteria) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

type View struct {
	Products []models.Product `json:"products"`
	Ceiling  float64          `json:"ceiling"`
	Criteria Criteria         `json:"criteria"`
	Types    []string         `json:"types"`
	Brands   []string         `json:"brands"`
}

// Load computes the ceiling once and seeds permissive criteria.
func Load(products []models.Product) View {
	ceiling := Ceiling(products)
	return View{
		Products: products,
		Ceiling:  ceiling,
		Criteria: Criteria{Type: All, Brand: All, MaxPrice: ceiling},
		Types:    distinct(products, func(p models.Product) string { return p.Type }),
		Brands:   distinct(products, func(p models.Product) string { return p.Brand }),
	}
}

// Apply filters the loaded products. A zero MaxPrice means the ceiling.
func (v View) Apply(c Criteria) []models.Product {
	if c.MaxPrice <= 0 {
		c.MaxPrice = v.Ceiling
	}
	return Filter(v.Products, c)
}

// Visible keeps active, non-deleted products, most recent first.
func Visible(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.IsDeleted && p.Status == models.ProductStatusActive {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func distinct(products []models.Product, key func(models.Product) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
