package repository

import (
	"context"
	"errors"

	"order-engine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForBuyer(ctx context.Context, id uint, buyerID uuid.UUID) (*models.Order, error)
	GetByIDForSession(ctx context.Context, id uint, sessionID uuid.UUID) (*models.Order, error)
	// UpdateStatusFrom moves the order from one status to another only if
	// it is still in the expected status; reports whether the row changed.
	UpdateStatusFrom(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	// AttachCoupon записывает купон и пересчитанные суммы, только пока к
	// заказу ещё не привязан купон; сообщает, изменилась ли строка.
	AttachCoupon(ctx context.Context, id, couponID uint, discount, total decimal.Decimal) (bool, error)
	// DetachCoupon снимает купон, только пока заказ всё ещё держит именно
	// его; сообщает, изменилась ли строка.
	DetachCoupon(ctx context.Context, id, couponID uint, total decimal.Decimal) (bool, error)
	// UpdateFieldsIfSlot применяет поля, только пока заказ держит ожидаемый
	// слот (nil — без слота); сообщает, изменилась ли строка.
	UpdateFieldsIfSlot(ctx context.Context, id uint, slotID *uint, fields map[string]any) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Lines", "Slot", "Coupon", "Payment").Create(o).Error
}

func (r *orderRepo) getOne(ctx context.Context, query string, args ...any) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Slot").Preload("Coupon").Preload("Payment").
		First(&ord, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *orderRepo) GetByIDForBuyer(ctx context.Context, id uint, buyerID uuid.UUID) (*models.Order, error) {
	return r.getOne(ctx, "id = ? AND buyer_id = ?", id, buyerID)
}

func (r *orderRepo) GetByIDForSession(ctx context.Context, id uint, sessionID uuid.UUID) (*models.Order, error) {
	return r.getOne(ctx, "id = ? AND session_id = ?", id, sessionID)
}

func (r *orderRepo) UpdateStatusFrom(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) AttachCoupon(ctx context.Context, id, couponID uint, discount, total decimal.Decimal) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND coupon_id IS NULL", id).
		Updates(map[string]any{"coupon_id": couponID, "discount": discount, "total": total})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) DetachCoupon(ctx context.Context, id, couponID uint, total decimal.Decimal) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND coupon_id = ?", id, couponID).
		Updates(map[string]any{"coupon_id": nil, "discount": decimal.Zero, "total": total})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) UpdateFieldsIfSlot(ctx context.Context, id uint, slotID *uint, fields map[string]any) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND slot_id IS NOT DISTINCT FROM ?", id, slotID).
		Updates(fields)
	return tx.RowsAffected > 0, tx.Error
}
