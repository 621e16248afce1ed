// Package pricing computes effective product prices from discount rules.
//
// Prices are integral amounts in the minor currency unit. The same calculation
// backs catalog listings, cart listings, and the price frozen into an order at
// checkout, so display and checkout can never drift apart.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported product discount strategies.
type DiscountType string

const (
	// DiscountNone applies no discount.
	DiscountNone DiscountType = ""
	// DiscountMoney subtracts a fixed amount from the base price.
	DiscountMoney DiscountType = "money"
	// DiscountPercent subtracts a percentage of the base price.
	DiscountPercent DiscountType = "percent"
)

var (
	// ErrDiscountExceedsPrice is returned when a money discount is larger
	// than the base price.
	ErrDiscountExceedsPrice = errors.New("discount must not exceed price")
	// ErrPercentOutOfRange is returned when a percent discount is above 100.
	ErrPercentOutOfRange = errors.New("percent discount must be between 0 and 100")
	// ErrNegativeDiscount is returned for negative discount values.
	ErrNegativeDiscount = errors.New("discount value must not be negative")
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice returns the price after applying the discount rule.
//
// Money discounts subtract the value directly. Percent discounts subtract
// round-half-up(base * value / 100); the rounding happens on the minor
// currency unit via decimal arithmetic so every call site agrees. The result
// is clamped at zero.
func EffectivePrice(basePrice int64, discountType DiscountType, discountValue int64) int64 {
	if basePrice < 0 {
		return 0
	}

	var price int64
	switch discountType {
	case DiscountMoney:
		price = basePrice - discountValue
	case DiscountPercent:
		reduction := decimal.NewFromInt(basePrice).
			Mul(decimal.NewFromInt(discountValue)).
			Div(hundred).
			Round(0) // round half away from zero on the minor unit
		price = basePrice - reduction.IntPart()
	default:
		price = basePrice
	}

	if price < 0 {
		return 0
	}
	return price
}

// ValidateDiscount checks the discount rule invariants: a money discount must
// not exceed the base price, a percent discount must be within [0, 100].
func ValidateDiscount(basePrice int64, discountType DiscountType, discountValue int64) error {
	if discountValue < 0 {
		return ErrNegativeDiscount
	}
	switch discountType {
	case DiscountMoney:
		if discountValue > basePrice {
			return ErrDiscountExceedsPrice
		}
	case DiscountPercent:
		if discountValue > 100 {
			return ErrPercentOutOfRange
		}
	}
	return nil
}
