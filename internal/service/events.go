package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID   uint            `json:"order_id"`
	Guest     bool            `json:"guest"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderPayedEvent struct {
	OrderID     uint            `json:"order_id"`
	Guest       bool            `json:"guest"`
	Total       decimal.Decimal `json:"total"`
	BonusEarned decimal.Decimal `json:"bonus_earned"`
	PayedAt     time.Time       `json:"payed_at"`
}

type OrderCancelledEvent struct {
	OrderID     uint      `json:"order_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// EventBus publishes order lifecycle events. Publishing is best-effort:
// callers ignore returned errors after logging.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderPayed(ctx context.Context, e OrderPayedEvent) error
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
}
