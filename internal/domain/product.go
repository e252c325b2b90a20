package domain

import "time"

// FirstProductID is the identifier assigned to the first product in an
// empty catalog. Subsequent products get max(existing)+1.
const FirstProductID = 40

// Product is a catalog entry. Prices are INR paise (fixed-point minor
// units). The ID is unique and immutable once assigned.
type Product struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Image              string    `json:"image"`
	Category           string    `json:"category"`
	PricePaise         int64     `json:"price_paise"`
	OriginalPricePaise int64     `json:"original_price_paise"`
	DiscountPercent    int32     `json:"discount_percent"`
	Available          bool      `json:"available"`
	Popular            bool      `json:"popular"`
	CreatedAt          time.Time `json:"created_at"`
}

// CreateProductParams contains the caller-supplied fields for a new
// product; the ID and timestamps are assigned by the store.
type CreateProductParams struct {
	Name               string
	Image              string
	Category           string
	PricePaise         int64
	OriginalPricePaise int64
	DiscountPercent    int32
}

// UpdateProductParams contains the mutable fields of a product.
// Nil pointers leave the existing value untouched.
type UpdateProductParams struct {
	Name               *string
	Image              *string
	Category           *string
	PricePaise         *int64
	OriginalPricePaise *int64
	DiscountPercent    *int32
	Available          *bool
}
