package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrSlotNotFound    = errors.New("pickup slot not found")

	ErrCartEmpty       = errors.New("cart is empty")
	ErrQuantityInvalid = errors.New("quantity must be > 0")

	ErrOrderNotPending = errors.New("order is not in PENDING status")
	ErrOrderModified   = errors.New("order was modified by a concurrent request")

	ErrPickupPointUnavailable = errors.New("pickup point is missing or inactive")
	ErrOutsideServiceHours    = errors.New("requested time is outside service hours")
	ErrSlotFull               = errors.New("pickup slot is full")
	ErrSlotNotAssigned        = errors.New("order has no pickup slot assigned")

	ErrCouponNotFound          = errors.New("coupon not found")
	ErrCouponInactive          = errors.New("coupon is inactive")
	ErrCouponNotYetValid       = errors.New("coupon is not yet valid")
	ErrCouponExpired           = errors.New("coupon has expired")
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
	ErrCouponAlreadyApplied    = errors.New("order already has a coupon applied")
	ErrNoCouponApplied         = errors.New("order has no coupon applied")

	ErrPaymentExists          = errors.New("payment already exists for order")
	ErrPayLaterRequiresCash   = errors.New("pay later is only allowed with cash payment")
	ErrManualCompleteCashOnly = errors.New("only cash payments may be completed manually")
	ErrPaymentNotPending      = errors.New("payment is not in PENDING status")

	ErrAddressRequired       = errors.New("delivery address is required")
	ErrPickupDetailsRequired = errors.New("pickup point and time are required")
	ErrInvalidTransition     = errors.New("invalid order status transition")
)

// InactiveProductsError carries the ids of products that became inactive
// while sitting in the cart; the caller must surface them and refuse to
// proceed.
type InactiveProductsError struct {
	ProductIDs []uuid.UUID
}

func (e *InactiveProductsError) Error() string {
	return fmt.Sprintf("cart contains %d inactive product(s)", len(e.ProductIDs))
}
