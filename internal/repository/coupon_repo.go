package repository

import (
	"context"
	"errors"

	"order-engine/internal/models"

	"gorm.io/gorm"
)

type CouponRepo interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByID(ctx context.Context, id uint) (*models.Coupon, error)
	// GetByCode looks up a coupon by its normalized code.
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	// IncrementUsage bumps the usage counter while the limit (if any)
	// still allows it; reports whether the bump happened.
	IncrementUsage(ctx context.Context, id uint) (bool, error)
	DecrementUsage(ctx context.Context, id uint) (bool, error)
}

type couponRepo struct{ db *gorm.DB }

func NewCouponRepo(db *gorm.DB) CouponRepo { return &couponRepo{db: db} }

func (r *couponRepo) Create(ctx context.Context, c *models.Coupon) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *couponRepo) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.WithContext(ctx).First(&c, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *couponRepo) IncrementUsage(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE coupons
SET usage_count = usage_count + 1,
    updated_at = now()
WHERE id = @id
  AND (usage_limit = 0 OR usage_count < usage_limit)
`, map[string]any{"id": id})
	return tx.RowsAffected > 0, tx.Error
}

func (r *couponRepo) DecrementUsage(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE coupons
SET usage_count = usage_count - 1,
    updated_at = now()
WHERE id = @id
  AND usage_count > 0
`, map[string]any{"id": id})
	return tx.RowsAffected > 0, tx.Error
}
