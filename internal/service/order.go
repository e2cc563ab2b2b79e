package service

import (
	"context"
	"time"

	"order-engine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartView is the owner's open cart: lines not yet linked to an order.
type CartView struct {
	Lines    []models.OrderLine
	Subtotal decimal.Decimal
}

type FinalizeInput struct {
	DeliveryMethod models.DeliveryMethod
	Name           string
	Email          string
	Phone          string
	PaymentMethod  models.PaymentMethod
	PayLater       bool

	// DELIVERY only.
	Address string

	// PICKUP only.
	PickupPointID uint
	PickupAt      time.Time
}

// OrderCache is a best-effort projection cache for fully loaded orders.
// Implementations must never fail a request: lookup misses and write
// errors are swallowed (logged) internally.
type OrderCache interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, bool)
	SetOrder(ctx context.Context, o *models.Order)
	Invalidate(ctx context.Context, id uint)
}

// OrderService owns the order lifecycle: cart→order conversion, slot
// selection, coupon apply/remove, finalization and the payment-gated
// status state machine. It is the only component that mutates order
// status.
type OrderService interface {
	GetCart(ctx context.Context) (*CartView, error)
	AddCartLine(ctx context.Context, productID uuid.UUID, quantity uint32) (*CartView, error)
	RemoveCartLine(ctx context.Context, productID uuid.UUID) (*CartView, error)

	InitOrder(ctx context.Context) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	SelectPickup(ctx context.Context, orderID, pointID uint, at time.Time) (*models.Order, error)
	ApplyCoupon(ctx context.Context, orderID uint, code string) (*models.Order, error)
	RemoveCoupon(ctx context.Context, orderID uint) (*models.Order, error)
	Finalize(ctx context.Context, orderID uint, in FinalizeInput) (*models.Order, error)

	CreatePayment(ctx context.Context, orderID uint, method models.PaymentMethod) (*models.Order, error)
	// CompleteCashPayment is the operator's manual completion path; only
	// CASH payments may be completed this way.
	CompleteCashPayment(ctx context.Context, orderID uint) (*models.Order, error)
	// CompleteGatewayPayment is invoked by the payment gateway adapter
	// when the external provider reports success.
	CompleteGatewayPayment(ctx context.Context, orderID uint) (*models.Order, error)
	// UpdateStatus is the administrative forward transition used for
	// SHIPPED / DELIVERED / CANCELLED.
	UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error)

	BonusBalance(ctx context.Context) (decimal.Decimal, error)
}
