package repository

import (
	"context"

	"order-engine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BonusRepo interface {
	Append(ctx context.Context, e *models.BonusEntry) error
	// Balance derives the buyer's bonus balance from the ledger.
	Balance(ctx context.Context, buyerID uuid.UUID) (decimal.Decimal, error)
	// HasAccrualForOrder reports whether an INCREASE entry was already
	// written for the order (exactly-once accrual guard).
	HasAccrualForOrder(ctx context.Context, orderID uint) (bool, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BonusEntry, error)
}

type bonusRepo struct{ db *gorm.DB }

func NewBonusRepo(db *gorm.DB) BonusRepo { return &bonusRepo{db: db} }

func (r *bonusRepo) Append(ctx context.Context, e *models.BonusEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *bonusRepo) Balance(ctx context.Context, buyerID uuid.UUID) (decimal.Decimal, error) {
	var res struct {
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.BonusEntry{}).
		Select(`COALESCE(SUM(CASE WHEN type = 'INCREASE' THEN amount ELSE -amount END), 0) AS balance`).
		Where("buyer_id = ?", buyerID).
		Scan(&res).Error
	return res.Balance, err
}

func (r *bonusRepo) HasAccrualForOrder(ctx context.Context, orderID uint) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.BonusEntry{}).
		Where("order_id = ? AND type = ?", orderID, models.BonusIncrease).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *bonusRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BonusEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.BonusEntry
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
