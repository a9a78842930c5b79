package discount

import (
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluate checks whether d applies to subtotal at now and returns the
// merchandise discount. FREE_SHIPPING codes return zero; shipping is waived by the caller.
func Evaluate(d *model.DiscountCode, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	switch {
	case !d.IsActive:
		return decimal.Zero, apperror.Invalid("DiscountInactive", "discount code is not active")
	case d.StartsAt != nil && now.Before(*d.StartsAt):
		return decimal.Zero, apperror.Invalid("DiscountNotStarted", "discount code is not valid yet")
	case d.EndsAt != nil && !now.Before(*d.EndsAt):
		return decimal.Zero, apperror.Invalid("DiscountExpired", "discount code has expired")
	case d.MaxUses != nil && d.UsedCount >= *d.MaxUses:
		return decimal.Zero, apperror.Invalid("DiscountExhausted", "discount code has been fully used")
	case subtotal.LessThan(d.MinOrderAmount):
		return decimal.Zero, apperror.Invalid("DiscountBelowMinimum", "order must be at least {{.Minimum}} to use this code").
			WithData("Minimum", d.MinOrderAmount.StringFixed(2))
	}

	var amount decimal.Decimal
	switch d.Type {
	case model.DiscountPercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
	case model.DiscountFixed:
		amount = d.Value
	default:
		return decimal.Zero, nil
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2), nil
}

// CheckDefinition validates the type and value of a code before it is stored.
func CheckDefinition(d *model.DiscountCode) error {
	switch d.Type {
	case model.DiscountPercentage:
		if !d.Value.IsPositive() || d.Value.GreaterThan(hundred) {
			return apperror.Invalid("DiscountPercentRange", "percentage must be greater than 0 and at most 100")
		}
	case model.DiscountFixed:
		if !d.Value.IsPositive() {
			return apperror.Invalid("DiscountValuePositive", "discount value must be positive")
		}
	case model.DiscountFreeShipping:
	default:
		return apperror.Invalid("DiscountTypeInvalid", "unknown discount type")
	}
	if d.MinOrderAmount.IsNegative() {
		return apperror.Invalid("DiscountMinimumNegative", "minimum order amount must not be negative")
	}
	if d.MaxUses != nil && *d.MaxUses < 1 {
		return apperror.Invalid("DiscountMaxUsesInvalid", "max uses must be at least 1")
	}
	if d.StartsAt != nil && d.EndsAt != nil && !d.StartsAt.Before(*d.EndsAt) {
		return apperror.Invalid("DateRangeInvalid", "start must be before end")
	}
	return nil
}
