package order

import (
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Settings are the store-wide pricing knobs.
type Settings struct {
	Currency              string
	ShippingFlatRate      decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRatePercent        decimal.Decimal
	PointValue            decimal.Decimal
}

type PriceInput struct {
	Subtotal        decimal.Decimal
	CodeDiscount    decimal.Decimal
	FreeShipping    bool
	TierPercent     decimal.Decimal
	PointsRequested int
	PointsBalance   int
	Ship            bool
}

type Totals struct {
	Subtotal        decimal.Decimal
	DiscountTotal   decimal.Decimal
	TierDiscount    decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	ShippingTotal   decimal.Decimal
	TaxTotal        decimal.Decimal
	GrandTotal      decimal.Decimal
	PointsRedeemed  int
}

// Price applies, in order: the code discount, the tier percentage on what is
// left, then loyalty points capped at the remainder. Shipping is flat unless
// waived, tax is charged on discounted merchandise. Amounts are rounded to 2 dp.
func (s Settings) Price(in PriceInput) (Totals, error) {
	if in.PointsRequested < 0 {
		return Totals{}, apperror.Invalid("PointsInvalid", "points to redeem must not be negative")
	}
	if in.PointsRequested > in.PointsBalance {
		return Totals{}, apperror.Invalid("PointsInsufficient", "you only have {{.Balance}} points").
			WithData("Balance", in.PointsBalance)
	}

	t := Totals{Subtotal: in.Subtotal.Round(2)}

	t.DiscountTotal = decimal.Min(in.CodeDiscount.Round(2), t.Subtotal)
	remaining := t.Subtotal.Sub(t.DiscountTotal)

	if in.TierPercent.IsPositive() {
		t.TierDiscount = remaining.Mul(in.TierPercent).Div(hundred).Round(2)
		remaining = remaining.Sub(t.TierDiscount)
	}

	if in.PointsRequested > 0 && s.PointValue.IsPositive() {
		points := in.PointsRequested
		if maxPoints := remaining.Div(s.PointValue).Floor().IntPart(); int64(points) > maxPoints {
			points = int(maxPoints)
		}
		t.PointsRedeemed = points
		t.LoyaltyDiscount = s.PointValue.Mul(decimal.NewFromInt(int64(points))).Round(2)
		remaining = remaining.Sub(t.LoyaltyDiscount)
	}

	if in.Ship && !in.FreeShipping && t.Subtotal.LessThan(s.FreeShippingThreshold) {
		t.ShippingTotal = s.ShippingFlatRate.Round(2)
	}
	if s.TaxRatePercent.IsPositive() {
		t.TaxTotal = remaining.Mul(s.TaxRatePercent).Div(hundred).Round(2)
	}

	t.GrandTotal = decimal.Max(remaining.Add(t.ShippingTotal).Add(t.TaxTotal), decimal.Zero).Round(2)
	return t, nil
}
