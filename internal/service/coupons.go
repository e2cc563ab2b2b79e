package service

import (
	"strings"
	"time"

	"order-engine/internal/models"

	"github.com/shopspring/decimal"
)

var percentDivisor = decimal.NewFromInt(100)

// NormalizeCouponCode makes coupon lookup case-insensitive: codes are
// stored and compared uppercased and trimmed.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validateCoupon checks the coupon's activity flag, validity window and
// usage limit against the given instant.
func validateCoupon(c *models.Coupon, now time.Time) error {
	switch {
	case c == nil:
		return ErrCouponNotFound
	case !c.IsActive:
		return ErrCouponInactive
	case now.Before(c.ValidFrom):
		return ErrCouponNotYetValid
	case now.After(c.ValidTo):
		return ErrCouponExpired
	case c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit:
		return ErrCouponUsageLimitReached
	}
	return nil
}

// ComputeDiscount resolves the coupon's discount for a subtotal:
// PERCENTAGE takes value% of the subtotal, FIXED takes the value as is.
// The result is rounded half-up to 2 decimal places and clamped so the
// final total never goes negative.
func ComputeDiscount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.Type {
	case models.CouponPercentage:
		amount = subtotal.Mul(c.Value).Div(percentDivisor)
	case models.CouponFixed:
		amount = c.Value
	default:
		return decimal.Zero
	}

	amount = amount.Round(2)
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount
}
