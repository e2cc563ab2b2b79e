package dto

import (
	"time"

	"order-engine/internal/models"

	"github.com/shopspring/decimal"
)

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  uint32 `json:"quantity" binding:"required,gt=0"`
}

type SelectPickupRequest struct {
	PickupPointID uint      `json:"pickup_point_id" binding:"required"`
	Time          time.Time `json:"time" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type FinalizeRequest struct {
	DeliveryMethod string `json:"delivery_method" binding:"required,oneof=PICKUP DELIVERY"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required"`
	PaymentMethod  string `json:"payment_method" binding:"required,oneof=ROBOKASSA CASH"`
	PayLater       bool   `json:"pay_later"`

	Address       string     `json:"address"`
	PickupPointID uint       `json:"pickup_point_id"`
	Time          *time.Time `json:"time"`
}

type CreatePaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=ROBOKASSA CASH"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PROCESSING PAYED SHIPPED DELIVERED CANCELLED"`
}

type GatewayCallbackRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

type OrderLineView struct {
	ID        uint            `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  uint32          `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type SlotView struct {
	ID            uint      `json:"id"`
	PickupPointID uint      `json:"pickup_point_id"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type PaymentView struct {
	ID     uint            `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Status string          `json:"status"`
}

type OrderView struct {
	ID             uint            `json:"id"`
	Status         string          `json:"status"`
	Lines          []OrderLineView `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	DeliveryMethod string          `json:"delivery_method"`
	PickupPointID  *uint           `json:"pickup_point_id,omitempty"`
	Slot           *SlotView       `json:"slot,omitempty"`
	CouponCode     *string         `json:"coupon_code,omitempty"`
	Address        *string         `json:"address,omitempty"`
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	PaymentMethod  *string         `json:"payment_method,omitempty"`
	PayLater       bool            `json:"pay_later"`
	BonusEarned    decimal.Decimal `json:"bonus_earned"`
	Payment        *PaymentView    `json:"payment,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type OrderResponse struct {
	Order   OrderView `json:"order"`
	Message string    `json:"message"`
}

type CartResponse struct {
	Lines    []OrderLineView `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Message  string          `json:"message"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func NewOrderLineView(l models.OrderLine) OrderLineView {
	return OrderLineView{
		ID:        l.ID,
		ProductID: l.ProductID.String(),
		Quantity:  l.Quantity,
		Price:     l.Price,
	}
}

func NewOrderView(o *models.Order) OrderView {
	view := OrderView{
		ID:             o.ID,
		Status:         string(o.Status),
		Lines:          make([]OrderLineView, 0, len(o.Lines)),
		Subtotal:       o.Subtotal,
		Discount:       o.Discount,
		Total:          o.Total,
		DeliveryMethod: string(o.DeliveryMethod),
		PickupPointID:  o.PickupPointID,
		Address:        o.Address,
		Name:           o.Name,
		Email:          o.Email,
		Phone:          o.Phone,
		PayLater:       o.PayLater,
		BonusEarned:    o.BonusEarned,
		CreatedAt:      o.CreatedAt,
	}
	for _, l := range o.Lines {
		view.Lines = append(view.Lines, NewOrderLineView(l))
	}
	if o.Slot != nil {
		view.Slot = &SlotView{
			ID:            o.Slot.ID,
			PickupPointID: o.Slot.PickupPointID,
			StartsAt:      o.Slot.StartsAt,
			EndsAt:        o.Slot.EndsAt,
		}
	}
	if o.Coupon != nil {
		code := o.Coupon.Code
		view.CouponCode = &code
	}
	if o.PaymentMethod != nil {
		m := string(*o.PaymentMethod)
		view.PaymentMethod = &m
	}
	if o.Payment != nil {
		view.Payment = &PaymentView{
			ID:     o.Payment.ID,
			Amount: o.Payment.Amount,
			Method: string(o.Payment.Method),
			Status: string(o.Payment.Status),
		}
	}
	return view
}
