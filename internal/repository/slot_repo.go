package repository

import (
	"context"
	"errors"
	"time"

	"order-engine/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotRepo interface {
	GetByID(ctx context.Context, id uint) (*models.PickupSlot, error)
	GetBucket(ctx context.Context, pointID uint, startsAt time.Time) (*models.PickupSlot, error)
	// CreateBucket inserts a fresh bucket with the creator's unit already
	// consumed (capacity 23 / reserved 1). Reports false when a concurrent
	// creator won the unique (point, start) race.
	CreateBucket(ctx context.Context, slot *models.PickupSlot) (bool, error)
	// TryReserve takes one unit: reserved+1, capacity-1, only while
	// capacity is positive. Reports whether the unit was taken.
	TryReserve(ctx context.Context, id uint) (bool, error)
	// Release returns one unit: reserved-1, capacity+1, only while
	// reserved is positive.
	Release(ctx context.Context, id uint) (bool, error)
}

type slotRepo struct{ db *gorm.DB }

func NewSlotRepo(db *gorm.DB) SlotRepo { return &slotRepo{db: db} }

func (r *slotRepo) GetByID(ctx context.Context, id uint) (*models.PickupSlot, error) {
	var slot models.PickupSlot
	err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &slot, err
}

func (r *slotRepo) GetBucket(ctx context.Context, pointID uint, startsAt time.Time) (*models.PickupSlot, error) {
	var slot models.PickupSlot
	err := r.db.WithContext(ctx).
		First(&slot, "pickup_point_id = ? AND starts_at = ?", pointID, startsAt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &slot, err
}

func (r *slotRepo) CreateBucket(ctx context.Context, slot *models.PickupSlot) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pickup_point_id"}, {Name: "starts_at"}},
			DoNothing: true,
		}).
		Create(slot)
	return tx.RowsAffected > 0, tx.Error
}

func (r *slotRepo) TryReserve(ctx context.Context, id uint) (bool, error) {
	// Atomic take of one unit; the row-level lock on the UPDATE is the
	// only concurrency control for the capacity counter.
	tx := r.db.WithContext(ctx).Exec(`
UPDATE pickup_slots
SET reserved = reserved + 1,
    capacity = capacity - 1
WHERE id = @id
  AND capacity > 0
`, map[string]any{"id": id})
	return tx.RowsAffected > 0, tx.Error
}

func (r *slotRepo) Release(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE pickup_slots
SET reserved = reserved - 1,
    capacity = capacity + 1
WHERE id = @id
  AND reserved > 0
`, map[string]any{"id": id})
	return tx.RowsAffected > 0, tx.Error
}
