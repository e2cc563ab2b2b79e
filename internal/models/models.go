package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusPayed      OrderStatus = "PAYED"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "PICKUP"
	DeliveryCourier DeliveryMethod = "DELIVERY"
)

type PaymentMethod string

const (
	PaymentMethodRobokassa PaymentMethod = "ROBOKASSA"
	PaymentMethodCash      PaymentMethod = "CASH"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type CouponType string

const (
	CouponPercentage CouponType = "PERCENTAGE"
	CouponFixed      CouponType = "FIXED"
)

type BonusType string

const (
	BonusIncrease BonusType = "INCREASE"
	BonusDecrease BonusType = "DECREASE"
)

// OwnerRef identifies the owner of a cart or order: either an
// authenticated buyer or a guest session, never both.
type OwnerRef struct {
	BuyerID   *uuid.UUID
	SessionID *uuid.UUID
}

func BuyerRef(id uuid.UUID) OwnerRef { return OwnerRef{BuyerID: &id} }

func GuestRef(id uuid.UUID) OwnerRef { return OwnerRef{SessionID: &id} }

func (o OwnerRef) IsGuest() bool { return o.BuyerID == nil && o.SessionID != nil }

func (o OwnerRef) IsZero() bool { return o.BuyerID == nil && o.SessionID == nil }

// Order is the root aggregate. Exactly one of BuyerID/SessionID is set
// (authenticated buyer vs guest session); the CHECK constraint lives in
// the migration.
type Order struct {
	ID        uint        `gorm:"primaryKey"`
	BuyerID   *uuid.UUID  `gorm:"type:uuid;index"`
	SessionID *uuid.UUID  `gorm:"type:uuid;index"`
	Status    OrderStatus `gorm:"type:text;not null;default:'PENDING';index"`

	Subtotal decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Discount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	DeliveryMethod DeliveryMethod `gorm:"type:text;not null;default:'PICKUP'"`
	PickupPointID  *uint          `gorm:"index"`
	SlotID         *uint          `gorm:"index"`
	CouponID       *uint          `gorm:"index"`
	Address        *string        `gorm:"type:text"`

	Name  string `gorm:"type:text;not null;default:''"`
	Email string `gorm:"type:text;not null;default:''"`
	Phone string `gorm:"type:text;not null;default:''"`

	PaymentMethod *PaymentMethod  `gorm:"type:text"`
	PayLater      bool            `gorm:"not null;default:false"`
	BonusEarned   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Lines   []OrderLine `gorm:"foreignKey:OrderID"`
	Slot    *PickupSlot `gorm:"foreignKey:SlotID"`
	Coupon  *Coupon     `gorm:"foreignKey:CouponID"`
	Payment *Payment    `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// IsGuest reports whether the order belongs to a guest session rather
// than an authenticated buyer.
func (o *Order) IsGuest() bool { return o.BuyerID == nil }

// OrderLine doubles as a cart line while OrderID is null. Price is the
// line snapshot (unit price × quantity); mutable in the cart, frozen
// once the line is linked to an order.
type OrderLine struct {
	ID        uint       `gorm:"primaryKey"`
	OrderID   *uint      `gorm:"index"`
	BuyerID   *uuid.UUID `gorm:"type:uuid;index"`
	SessionID *uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity  uint32     `gorm:"type:int;not null"`

	Price decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderLine) TableName() string { return "order_lines" }

type PickupPoint struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:text;not null"`
	Address  string `gorm:"type:text;not null;default:''"`
	Timezone string `gorm:"type:text;not null;default:'Europe/Moscow'"`
	IsActive bool   `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (PickupPoint) TableName() string { return "pickup_points" }

// SlotTotalCapacity is the fixed per-bucket unit count.
const SlotTotalCapacity = 24

// PickupSlot is one hourly capacity bucket at one pickup point, keyed
// by (pickup_point_id, starts_at). Capacity holds the remaining units,
// Reserved the taken ones; their sum stays at SlotTotalCapacity for the
// whole slot lifetime.
type PickupSlot struct {
	ID            uint      `gorm:"primaryKey"`
	PickupPointID uint      `gorm:"not null;index;uniqueIndex:ux_pickup_slots_point_start"`
	StartsAt      time.Time `gorm:"not null;uniqueIndex:ux_pickup_slots_point_start"`
	EndsAt        time.Time `gorm:"not null"`
	Capacity      int       `gorm:"not null"`
	Reserved      int       `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (PickupSlot) TableName() string { return "pickup_slots" }

type Coupon struct {
	ID         uint            `gorm:"primaryKey"`
	Code       string          `gorm:"type:text;not null;uniqueIndex"`
	Type       CouponType      `gorm:"type:text;not null"`
	Value      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ValidFrom  time.Time       `gorm:"not null"`
	ValidTo    time.Time       `gorm:"not null"`
	UsageLimit int             `gorm:"not null;default:0"` // 0 = unlimited
	UsageCount int             `gorm:"not null;default:0"`
	IsActive   bool            `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Coupon) TableName() string { return "coupons" }

// Payment is one-to-one with an order; Amount copies the order total at
// creation time.
type Payment struct {
	ID      uint            `gorm:"primaryKey"`
	OrderID uint            `gorm:"not null;uniqueIndex"`
	Amount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Method  PaymentMethod   `gorm:"type:text;not null"`
	Status  PaymentStatus   `gorm:"type:text;not null;default:'PENDING'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Payment) TableName() string { return "payments" }

// BonusEntry is an append-only loyalty ledger record. Balance is always
// derived as sum(INCREASE) - sum(DECREASE), never stored.
type BonusEntry struct {
	ID          uint            `gorm:"primaryKey"`
	BuyerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID     *uint           `gorm:"index"`
	Type        BonusType       `gorm:"type:text;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description string          `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}

func (BonusEntry) TableName() string { return "bonus_entries" }

// LoyaltyAccount tracks a buyer's lifetime spend for tier resolution.
type LoyaltyAccount struct {
	BuyerID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TotalSpent decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (LoyaltyAccount) TableName() string { return "loyalty_accounts" }
