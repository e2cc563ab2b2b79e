package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB       *gorm.DB
	Orders   OrderRepo
	Lines    OrderLineRepo
	Points   PickupPointRepo
	Slots    SlotRepo
	Coupons  CouponRepo
	Payments PaymentRepo
	Bonus    BonusRepo
	Loyalty  LoyaltyRepo
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		DB:       db,
		Orders:   NewOrderRepo(db),
		Lines:    NewOrderLineRepo(db),
		Points:   NewPickupPointRepo(db),
		Slots:    NewSlotRepo(db),
		Coupons:  NewCouponRepo(db),
		Payments: NewPaymentRepo(db),
		Bonus:    NewBonusRepo(db),
		Loyalty:  NewLoyaltyRepo(db),
	}
}

// WithTx runs fn against a transactional copy of the repository bundle.
// When DB is nil (mock bundles in tests) fn runs against the bundle
// itself, without a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.DB == nil {
		return fn(r)
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
