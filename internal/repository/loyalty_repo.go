package repository

import (
	"context"
	"errors"

	"order-engine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoyaltyRepo interface {
	Get(ctx context.Context, buyerID uuid.UUID) (*models.LoyaltyAccount, error)
	// AddSpent bumps the buyer's lifetime spend, creating the account on
	// first use.
	AddSpent(ctx context.Context, buyerID uuid.UUID, amount decimal.Decimal) error
}

type loyaltyRepo struct{ db *gorm.DB }

func NewLoyaltyRepo(db *gorm.DB) LoyaltyRepo { return &loyaltyRepo{db: db} }

func (r *loyaltyRepo) Get(ctx context.Context, buyerID uuid.UUID) (*models.LoyaltyAccount, error) {
	var acc models.LoyaltyAccount
	err := r.db.WithContext(ctx).First(&acc, "buyer_id = ?", buyerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &acc, err
}

func (r *loyaltyRepo) AddSpent(ctx context.Context, buyerID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO loyalty_accounts (buyer_id, total_spent, updated_at)
VALUES (@buyer, @amount, now())
ON CONFLICT (buyer_id)
DO UPDATE SET total_spent = loyalty_accounts.total_spent + EXCLUDED.total_spent,
              updated_at = now()
`, map[string]any{"buyer": buyerID, "amount": amount}).Error
}
