package repository

import (
	"context"
	"errors"

	"order-engine/internal/models"

	"gorm.io/gorm"
)

type PaymentRepo interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error)
	// UpdateStatusFrom transitions a payment only from the expected
	// status; reports whether the row changed.
	UpdateStatusFrom(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) PaymentRepo { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).First(&p, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *paymentRepo) UpdateStatusFrom(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return tx.RowsAffected > 0, tx.Error
}
