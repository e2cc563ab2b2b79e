package repository

import (
	"context"
	"errors"

	"order-engine/internal/models"

	"gorm.io/gorm"
)

type PickupPointRepo interface {
	GetByID(ctx context.Context, id uint) (*models.PickupPoint, error)
	Create(ctx context.Context, p *models.PickupPoint) error
}

type pickupPointRepo struct{ db *gorm.DB }

func NewPickupPointRepo(db *gorm.DB) PickupPointRepo { return &pickupPointRepo{db: db} }

func (r *pickupPointRepo) GetByID(ctx context.Context, id uint) (*models.PickupPoint, error) {
	var p models.PickupPoint
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *pickupPointRepo) Create(ctx context.Context, p *models.PickupPoint) error {
	return r.db.WithContext(ctx).Create(p).Error
}
