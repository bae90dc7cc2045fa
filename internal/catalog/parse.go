package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const PlaceholderThumbnail = "https://placehold.co/400x400?text=No+Image"

var (
	defaultDimensions = domain.Dimensions{Length: 10, Width: 10, Height: 10}
	defaultShipping   = domain.Shipping{Weight: 1, Dimensions: "10x10x10"}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// SplitList extracts the product records from a list response. The records
// may be the top-level array or nested under "products" or "data". Any other
// shape yields no records.
func SplitList(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("json.Unmarshal array: %w", err)
		}
		return records, nil
	}

	if body[0] != '{' {
		if !json.Valid(body) {
			return nil, errors.New("list body is not valid JSON")
		}
		return nil, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("json.Unmarshal object: %w", err)
	}

	for _, key := range []string{"products", "data"} {
		nested, ok := envelope[key]
		if !ok {
			continue
		}

		var records []json.RawMessage
		if err := json.Unmarshal(nested, &records); err == nil {
			return records, nil
		}
	}

	return nil, nil
}

// ParseProduct turns one catalog record into a validated product, filling
// in defaults for missing descriptive fields. Records without a usable id
// or with a negative price are rejected.
func ParseProduct(raw json.RawMessage) (domain.Product, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec map[string]any
	if err := dec.Decode(&rec); err != nil || rec == nil {
		return domain.Product{}, &ValidationError{Field: "record", Reason: "not a JSON object"}
	}

	id, err := parseID(rec["id"])
	if err != nil {
		return domain.Product{}, err
	}

	price := decimal.Zero
	if n, ok := rec["price"].(json.Number); ok {
		if price, err = decimal.NewFromString(n.String()); err != nil {
			return domain.Product{}, &ValidationError{Field: "price", Reason: "not a decimal"}
		}
	}
	if price.IsNegative() {
		return domain.Product{}, &ValidationError{Field: "price", Reason: "must not be negative"}
	}

	p := domain.Product{
		ID:                 id,
		Title:              stringOr(rec, "title", "Untitled Product"),
		Description:        stringOr(rec, "description", "No description available"),
		Price:              price,
		Thumbnail:          thumbnail(rec),
		Category:           stringOr(rec, "category", "Uncategorized"),
		Rating:             numberOr(rec, "rating", 0),
		Stock:              int(numberOr(rec, "stock", 0)),
		DiscountPercentage: numberOr(rec, "discountPercentage", 0),
		Brand:              stringOr(rec, "brand", "Generic"),
		SKU:                stringOr(rec, "sku", fmt.Sprintf("SKU-%d", id)),
		Weight:             numberOr(rec, "weight", 1),
		Dimensions:         dimensions(rec["dimensions"]),
		Material:           stringOr(rec, "material", "Standard"),
		Color:              stringOr(rec, "color", "Various"),
		Features:           stringSlice(rec["features"]),
		Warranty:           stringOr(rec, "warranty", "1 Year"),
		Shipping:           shipping(rec["shipping"]),
	}

	if err := validate.Struct(p); err != nil {
		return domain.Product{}, &ValidationError{Field: "record", Reason: err.Error()}
	}

	return p, nil
}

func parseID(v any) (int64, error) {
	switch id := v.(type) {
	case nil:
		return 0, &ValidationError{Field: "id", Reason: "is missing"}
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, &ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not an integer", id)}
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, &ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not an integer", id)}
		}
		return n, nil
	default:
		return 0, &ValidationError{Field: "id", Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func stringOr(rec map[string]any, key, def string) string {
	if s, ok := rec[key].(string); ok && s != "" {
		return s
	}
	return def
}

func numberOr(rec map[string]any, key string, def float64) float64 {
	return toFloat(rec[key], def)
}

func toFloat(v any, def float64) float64 {
	n, ok := v.(json.Number)
	if !ok {
		return def
	}
	f, err := n.Float64()
	if err != nil {
		return def
	}
	return f
}

func thumbnail(rec map[string]any) string {
	if s, ok := rec["thumbnail"].(string); ok && s != "" {
		return s
	}
	if images, ok := rec["images"].([]any); ok && len(images) > 0 {
		if s, ok := images[0].(string); ok && s != "" {
			return s
		}
	}
	return PlaceholderThumbnail
}

func dimensions(v any) domain.Dimensions {
	m, ok := v.(map[string]any)
	if !ok {
		return defaultDimensions
	}
	return domain.Dimensions{
		Length: toFloat(m["length"], 0),
		Width:  toFloat(m["width"], 0),
		Height: toFloat(m["height"], 0),
	}
}

func shipping(v any) domain.Shipping {
	m, ok := v.(map[string]any)
	if !ok {
		return defaultShipping
	}
	s := domain.Shipping{Weight: toFloat(m["weight"], 0)}
	s.Dimensions, _ = m["dimensions"].(string)
	return s
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// withDefaults fills the descriptive fields a new product must carry.
func withDefaults(in domain.ProductInput, skuSuffix int64) domain.ProductInput {
	if in.SKU == "" {
		in.SKU = fmt.Sprintf("SKU-%d", skuSuffix)
	}
	if in.Brand == "" {
		in.Brand = "Generic"
	}
	if in.Weight == 0 {
		in.Weight = 1
	}
	if in.Dimensions == nil {
		d := defaultDimensions
		in.Dimensions = &d
	}
	if in.Material == "" {
		in.Material = "Standard"
	}
	if in.Color == "" {
		in.Color = "Various"
	}
	if in.Features == nil {
		in.Features = []string{}
	}
	if in.Warranty == "" {
		in.Warranty = "1 Year"
	}
	if in.Shipping == nil {
		s := defaultShipping
		in.Shipping = &s
	}
	return in
}
