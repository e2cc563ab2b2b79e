package service_test

import (
	"context"
	"time"

	"order-engine/internal/models"
	"order-engine/internal/repository"
	"order-engine/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Моки для зависимостей OrderService

// MockOrderRepo
type MockOrderRepo struct {
	CreateFunc             func(ctx context.Context, o *models.Order) error
	GetByIDFunc            func(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForBuyerFunc    func(ctx context.Context, id uint, buyerID uuid.UUID) (*models.Order, error)
	GetByIDForSessionFunc  func(ctx context.Context, id uint, sessionID uuid.UUID) (*models.Order, error)
	UpdateStatusFromFunc   func(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error)
	UpdateFieldsFunc       func(ctx context.Context, id uint, fields map[string]any) error
	AttachCouponFunc       func(ctx context.Context, id, couponID uint, discount, total decimal.Decimal) (bool, error)
	DetachCouponFunc       func(ctx context.Context, id, couponID uint, total decimal.Decimal) (bool, error)
	UpdateFieldsIfSlotFunc func(ctx context.Context, id uint, slotID *uint, fields map[string]any) (bool, error)
}

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	return nil
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByIDForBuyer(ctx context.Context, id uint, buyerID uuid.UUID) (*models.Order, error) {
	if m.GetByIDForBuyerFunc != nil {
		return m.GetByIDForBuyerFunc(ctx, id, buyerID)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByIDForSession(ctx context.Context, id uint, sessionID uuid.UUID) (*models.Order, error) {
	if m.GetByIDForSessionFunc != nil {
		return m.GetByIDForSessionFunc(ctx, id, sessionID)
	}
	return nil, nil
}

func (m *MockOrderRepo) UpdateStatusFrom(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error) {
	if m.UpdateStatusFromFunc != nil {
		return m.UpdateStatusFromFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *MockOrderRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if m.UpdateFieldsFunc != nil {
		return m.UpdateFieldsFunc(ctx, id, fields)
	}
	return nil
}

func (m *MockOrderRepo) AttachCoupon(ctx context.Context, id, couponID uint, discount, total decimal.Decimal) (bool, error) {
	if m.AttachCouponFunc != nil {
		return m.AttachCouponFunc(ctx, id, couponID, discount, total)
	}
	return true, nil
}

func (m *MockOrderRepo) DetachCoupon(ctx context.Context, id, couponID uint, total decimal.Decimal) (bool, error) {
	if m.DetachCouponFunc != nil {
		return m.DetachCouponFunc(ctx, id, couponID, total)
	}
	return true, nil
}

func (m *MockOrderRepo) UpdateFieldsIfSlot(ctx context.Context, id uint, slotID *uint, fields map[string]any) (bool, error) {
	if m.UpdateFieldsIfSlotFunc != nil {
		return m.UpdateFieldsIfSlotFunc(ctx, id, slotID, fields)
	}
	return true, nil
}

// MockOrderLineRepo
type MockOrderLineRepo struct {
	CartByOwnerFunc    func(ctx context.Context, owner models.OwnerRef) ([]models.OrderLine, error)
	GetCartLineFunc    func(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (*models.OrderLine, error)
	UpsertCartLineFunc func(ctx context.Context, line *models.OrderLine) error
	DeleteCartLineFunc func(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (int64, error)
	UpdatePriceFunc    func(ctx context.Context, id uint, price decimal.Decimal) error
	LinkToOrderFunc    func(ctx context.Context, owner models.OwnerRef, orderID uint) (int64, error)
	GetByOrderIDFunc   func(ctx context.Context, orderID uint) ([]models.OrderLine, error)
}

func (m *MockOrderLineRepo) CartByOwner(ctx context.Context, owner models.OwnerRef) ([]models.OrderLine, error) {
	if m.CartByOwnerFunc != nil {
		return m.CartByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *MockOrderLineRepo) GetCartLine(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (*models.OrderLine, error) {
	if m.GetCartLineFunc != nil {
		return m.GetCartLineFunc(ctx, owner, productID)
	}
	return nil, nil
}

func (m *MockOrderLineRepo) UpsertCartLine(ctx context.Context, line *models.OrderLine) error {
	if m.UpsertCartLineFunc != nil {
		return m.UpsertCartLineFunc(ctx, line)
	}
	return nil
}

func (m *MockOrderLineRepo) DeleteCartLine(ctx context.Context, owner models.OwnerRef, productID uuid.UUID) (int64, error) {
	if m.DeleteCartLineFunc != nil {
		return m.DeleteCartLineFunc(ctx, owner, productID)
	}
	return 0, nil
}

func (m *MockOrderLineRepo) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) error {
	if m.UpdatePriceFunc != nil {
		return m.UpdatePriceFunc(ctx, id, price)
	}
	return nil
}

func (m *MockOrderLineRepo) LinkToOrder(ctx context.Context, owner models.OwnerRef, orderID uint) (int64, error) {
	if m.LinkToOrderFunc != nil {
		return m.LinkToOrderFunc(ctx, owner, orderID)
	}
	return 0, nil
}

func (m *MockOrderLineRepo) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderLine, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return nil, nil
}

// MockPickupPointRepo
type MockPickupPointRepo struct {
	GetByIDFunc func(ctx context.Context, id uint) (*models.PickupPoint, error)
	CreateFunc  func(ctx context.Context, p *models.PickupPoint) error
}

func (m *MockPickupPointRepo) GetByID(ctx context.Context, id uint) (*models.PickupPoint, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPickupPointRepo) Create(ctx context.Context, p *models.PickupPoint) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

// MockSlotRepo
type MockSlotRepo struct {
	GetByIDFunc      func(ctx context.Context, id uint) (*models.PickupSlot, error)
	GetBucketFunc    func(ctx context.Context, pointID uint, startsAt time.Time) (*models.PickupSlot, error)
	CreateBucketFunc func(ctx context.Context, slot *models.PickupSlot) (bool, error)
	TryReserveFunc   func(ctx context.Context, id uint) (bool, error)
	ReleaseFunc      func(ctx context.Context, id uint) (bool, error)
}

func (m *MockSlotRepo) GetByID(ctx context.Context, id uint) (*models.PickupSlot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSlotRepo) GetBucket(ctx context.Context, pointID uint, startsAt time.Time) (*models.PickupSlot, error) {
	if m.GetBucketFunc != nil {
		return m.GetBucketFunc(ctx, pointID, startsAt)
	}
	return nil, nil
}

func (m *MockSlotRepo) CreateBucket(ctx context.Context, slot *models.PickupSlot) (bool, error) {
	if m.CreateBucketFunc != nil {
		return m.CreateBucketFunc(ctx, slot)
	}
	return true, nil
}

func (m *MockSlotRepo) TryReserve(ctx context.Context, id uint) (bool, error) {
	if m.TryReserveFunc != nil {
		return m.TryReserveFunc(ctx, id)
	}
	return true, nil
}

func (m *MockSlotRepo) Release(ctx context.Context, id uint) (bool, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, id)
	}
	return true, nil
}

// MockCouponRepo
type MockCouponRepo struct {
	CreateFunc         func(ctx context.Context, c *models.Coupon) error
	GetByIDFunc        func(ctx context.Context, id uint) (*models.Coupon, error)
	GetByCodeFunc      func(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUsageFunc func(ctx context.Context, id uint) (bool, error)
	DecrementUsageFunc func(ctx context.Context, id uint) (bool, error)
}

func (m *MockCouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil
}

func (m *MockCouponRepo) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *MockCouponRepo) IncrementUsage(ctx context.Context, id uint) (bool, error) {
	if m.IncrementUsageFunc != nil {
		return m.IncrementUsageFunc(ctx, id)
	}
	return true, nil
}

func (m *MockCouponRepo) DecrementUsage(ctx context.Context, id uint) (bool, error) {
	if m.DecrementUsageFunc != nil {
		return m.DecrementUsageFunc(ctx, id)
	}
	return true, nil
}

// MockPaymentRepo
type MockPaymentRepo struct {
	CreateFunc           func(ctx context.Context, p *models.Payment) error
	GetByOrderIDFunc     func(ctx context.Context, orderID uint) (*models.Payment, error)
	UpdateStatusFromFunc func(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error)
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *MockPaymentRepo) GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockPaymentRepo) UpdateStatusFrom(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error) {
	if m.UpdateStatusFromFunc != nil {
		return m.UpdateStatusFromFunc(ctx, id, from, to)
	}
	return true, nil
}

// MockBonusRepo
type MockBonusRepo struct {
	AppendFunc             func(ctx context.Context, e *models.BonusEntry) error
	BalanceFunc            func(ctx context.Context, buyerID uuid.UUID) (decimal.Decimal, error)
	HasAccrualForOrderFunc func(ctx context.Context, orderID uint) (bool, error)
	ListByBuyerFunc        func(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BonusEntry, error)
}

func (m *MockBonusRepo) Append(ctx context.Context, e *models.BonusEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, e)
	}
	return nil
}

func (m *MockBonusRepo) Balance(ctx context.Context, buyerID uuid.UUID) (decimal.Decimal, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, buyerID)
	}
	return decimal.Zero, nil
}

func (m *MockBonusRepo) HasAccrualForOrder(ctx context.Context, orderID uint) (bool, error) {
	if m.HasAccrualForOrderFunc != nil {
		return m.HasAccrualForOrderFunc(ctx, orderID)
	}
	return false, nil
}

func (m *MockBonusRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BonusEntry, error) {
	if m.ListByBuyerFunc != nil {
		return m.ListByBuyerFunc(ctx, buyerID, limit)
	}
	return nil, nil
}

// MockLoyaltyRepo
type MockLoyaltyRepo struct {
	GetFunc      func(ctx context.Context, buyerID uuid.UUID) (*models.LoyaltyAccount, error)
	AddSpentFunc func(ctx context.Context, buyerID uuid.UUID, amount decimal.Decimal) error
}

func (m *MockLoyaltyRepo) Get(ctx context.Context, buyerID uuid.UUID) (*models.LoyaltyAccount, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, buyerID)
	}
	return nil, nil
}

func (m *MockLoyaltyRepo) AddSpent(ctx context.Context, buyerID uuid.UUID, amount decimal.Decimal) error {
	if m.AddSpentFunc != nil {
		return m.AddSpentFunc(ctx, buyerID, amount)
	}
	return nil
}

// MockCatalog
type MockCatalog struct {
	GetProductFunc func(ctx context.Context, id uuid.UUID) (*service.ProductInfo, error)
}

func (m *MockCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*service.ProductInfo, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, nil
}

// MockEventBus записывает опубликованные события
type MockEventBus struct {
	Created   []service.OrderCreatedEvent
	Payed     []service.OrderPayedEvent
	Cancelled []service.OrderCancelledEvent
}

func (m *MockEventBus) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	m.Created = append(m.Created, e)
	return nil
}

func (m *MockEventBus) PublishOrderPayed(ctx context.Context, e service.OrderPayedEvent) error {
	m.Payed = append(m.Payed, e)
	return nil
}

func (m *MockEventBus) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	m.Cancelled = append(m.Cancelled, e)
	return nil
}

// mockBundle собирает мок-репозитории в bundle с nil DB: WithTx в этом
// режиме выполняет функцию без транзакции.
type mockBundle struct {
	Orders   *MockOrderRepo
	Lines    *MockOrderLineRepo
	Points   *MockPickupPointRepo
	Slots    *MockSlotRepo
	Coupons  *MockCouponRepo
	Payments *MockPaymentRepo
	Bonus    *MockBonusRepo
	Loyalty  *MockLoyaltyRepo
}

func newMockBundle() *mockBundle {
	return &mockBundle{
		Orders:   &MockOrderRepo{},
		Lines:    &MockOrderLineRepo{},
		Points:   &MockPickupPointRepo{},
		Slots:    &MockSlotRepo{},
		Coupons:  &MockCouponRepo{},
		Payments: &MockPaymentRepo{},
		Bonus:    &MockBonusRepo{},
		Loyalty:  &MockLoyaltyRepo{},
	}
}

func (b *mockBundle) repo() *repository.Repository {
	return &repository.Repository{
		Orders:   b.Orders,
		Lines:    b.Lines,
		Points:   b.Points,
		Slots:    b.Slots,
		Coupons:  b.Coupons,
		Payments: b.Payments,
		Bonus:    b.Bonus,
		Loyalty:  b.Loyalty,
	}
}
