// Package browse filters and orders catalog listings for the shop pages.
package browse

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
)

const AllCategories = "all"

type Sort string

const (
	SortFeatured  Sort = "featured"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortRating    Sort = "rating"
)

func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortFeatured:
		return SortFeatured, nil
	case SortPriceLow, SortPriceHigh, SortRating:
		return Sort(s), nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

type Query struct {
	Search   string
	Category string
	Sort     Sort
}

// Filter returns the products matching q in the requested order. The input
// slice is not modified. Featured keeps catalog order.
func Filter(products []domain.Product, q Query) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if category != "" && !strings.EqualFold(category, AllCategories) && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	case SortRating:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(b.Rating, a.Rating) })
	}

	return out
}

// Categories lists "all" followed by each distinct category in first-seen order.
func Categories(products []domain.Product) []string {
	out := []string{AllCategories}
	seen := make(map[string]struct{}, len(products))

	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}

	return out
}

func CountByCategory(products []domain.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	return counts
}

// Featured returns up to n products with the highest rating.
func Featured(products []domain.Product, n int) []domain.Product {
	top := Filter(products, Query{Sort: SortRating})
	if n < 0 {
		n = 0
	}
	if len(top) > n {
		top = top[:n]
	}
	return top
}
