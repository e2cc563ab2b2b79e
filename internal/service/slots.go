package service

import (
	"context"
	"time"

	"order-engine/internal/models"
	"order-engine/internal/repository"
)

// Pickup points take orders between 10:00 and 21:00 local time.
const (
	serviceHourOpen  = 10
	serviceHourClose = 21
)

// bucketStart floors the requested instant to the start of its hour in
// the pickup point's business timezone. Two requests within the same
// local hour always resolve to the same bucket and compete for the same
// capacity pool.
func bucketStart(at time.Time, loc *time.Location) time.Time {
	local := at.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
}

func withinServiceHours(at time.Time, loc *time.Location) bool {
	h := at.In(loc).Hour()
	return h >= serviceHourOpen && h < serviceHourClose
}

// reserveSlot resolves the canonical bucket for (pointID, at) and takes
// one unit of its capacity, creating the bucket on first use with the
// creator's unit already consumed. Must be called inside the same
// transaction as the order mutation that references the slot.
func reserveSlot(ctx context.Context, tx *repository.Repository, pointID uint, at time.Time) (*models.PickupSlot, error) {
	point, err := tx.Points.GetByID(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if point == nil || !point.IsActive {
		return nil, ErrPickupPointUnavailable
	}

	loc, err := time.LoadLocation(point.Timezone)
	if err != nil {
		return nil, err
	}
	if !withinServiceHours(at, loc) {
		return nil, ErrOutsideServiceHours
	}

	start := bucketStart(at, loc)
	slot := &models.PickupSlot{
		PickupPointID: pointID,
		StartsAt:      start,
		EndsAt:        start.Add(time.Hour),
		Capacity:      models.SlotTotalCapacity - 1,
		Reserved:      1,
	}
	created, err := tx.Slots.CreateBucket(ctx, slot)
	if err != nil {
		return nil, err
	}
	if created {
		return slot, nil
	}

	// Bucket already exists; race for one of its remaining units.
	existing, err := tx.Slots.GetBucket(ctx, pointID, start)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSlotNotFound
	}
	taken, err := tx.Slots.TryReserve(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, ErrSlotFull
	}
	existing.Reserved++
	existing.Capacity--
	return existing, nil
}

// releaseSlot returns one unit to the slot's pool. A no-op on a slot
// with nothing reserved.
func releaseSlot(ctx context.Context, tx *repository.Repository, slotID uint) error {
	_, err := tx.Slots.Release(ctx, slotID)
	return err
}
