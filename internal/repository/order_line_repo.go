package repository

import (
	"context"
	"errors"

	"order-engine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderLineRepo interface {
	// CartByOwner returns the owner's open cart: lines with no order id.
	CartByOwner(ctx context.Context, owner models.OwnerRef) ([]models.OrderLine, error)
	GetCartLine(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (*models.OrderLine, error)
	UpsertCartLine(ctx context.Context, line *models.OrderLine) error
	DeleteCartLine(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (int64, error)
	UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) error
	// LinkToOrder relinks all of the owner's cart lines to the given order.
	LinkToOrder(ctx context.Context, owner models.OwnerRef, orderID uint) (int64, error)
	GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderLine, error)
}

type orderLineRepo struct{ db *gorm.DB }

func NewOrderLineRepo(db *gorm.DB) OrderLineRepo { return &orderLineRepo{db: db} }

func ownerScope(owner models.OwnerRef) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if owner.BuyerID != nil {
			return q.Where("buyer_id = ?", *owner.BuyerID)
		}
		return q.Where("session_id = ?", *owner.SessionID)
	}
}

func (r *orderLineRepo) CartByOwner(ctx context.Context, owner models.OwnerRef) ([]models.OrderLine, error) {
	var rows []models.OrderLine
	err := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Where("order_id IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *orderLineRepo) GetCartLine(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Where("order_id IS NULL AND product_id = ?", productID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &line, err
}

func (r *orderLineRepo) UpsertCartLine(ctx context.Context, line *models.OrderLine) error {
	if line.ID != 0 {
		return r.db.WithContext(ctx).Model(&models.OrderLine{}).Where("id = ?", line.ID).
			Updates(map[string]any{"quantity": line.Quantity, "price": line.Price}).Error
	}
	return r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(line).Error
}

func (r *orderLineRepo) DeleteCartLine(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Where("order_id IS NULL AND product_id = ?", productID).
		Delete(&models.OrderLine{})
	return tx.RowsAffected, tx.Error
}

func (r *orderLineRepo) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.OrderLine{}).Where("id = ?", id).
		Update("price", price).Error
}

func (r *orderLineRepo) LinkToOrder(ctx context.Context, owner models.OwnerRef, orderID uint) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.OrderLine{}).
		Scopes(ownerScope(owner)).
		Where("order_id IS NULL").
		Update("order_id", orderID)
	return tx.RowsAffected, tx.Error
}

func (r *orderLineRepo) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderLine, error) {
	var rows []models.OrderLine
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}
