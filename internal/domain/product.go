package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID                 int64           `json:"id" validate:"gte=0"`
	Title              string          `json:"title" validate:"required"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Thumbnail          string          `json:"thumbnail"`
	Category           string          `json:"category" validate:"required"`
	Rating             float64         `json:"rating"`
	Stock              int             `json:"stock"`
	DiscountPercentage float64         `json:"discountPercentage"`
	Brand              string          `json:"brand"`
	SKU                string          `json:"sku"`
	Weight             float64         `json:"weight"`
	Dimensions         Dimensions      `json:"dimensions"`
	Material           string          `json:"material"`
	Color              string          `json:"color"`
	Features           []string        `json:"features"`
	Warranty           string          `json:"warranty"`
	Shipping           Shipping        `json:"shipping"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Shipping struct {
	Weight     float64 `json:"weight"`
	Dimensions string  `json:"dimensions"`
}

// ProductInput is a new catalog product. Zero-valued descriptive fields
// are filled with catalog defaults before sending.
type ProductInput struct {
	Title              string      `json:"title" validate:"required,max=200"`
	Description        string      `json:"description" validate:"max=5000"`
	Price              float64     `json:"price" validate:"gte=0"`
	Thumbnail          string      `json:"thumbnail" validate:"omitempty,url"`
	Category           string      `json:"category" validate:"required"`
	Stock              int         `json:"stock"`
	Rating             float64     `json:"rating" validate:"gte=0,lte=5"`
	DiscountPercentage float64     `json:"discountPercentage" validate:"gte=0,lte=100"`
	Brand              string      `json:"brand"`
	SKU                string      `json:"sku"`
	Weight             float64     `json:"weight" validate:"gte=0"`
	Dimensions         *Dimensions `json:"dimensions,omitempty"`
	Material           string      `json:"material"`
	Color              string      `json:"color"`
	Features           []string    `json:"features"`
	Warranty           string      `json:"warranty"`
	Shipping           *Shipping   `json:"shipping,omitempty"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail,omitempty" validate:"omitempty,url"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
}
