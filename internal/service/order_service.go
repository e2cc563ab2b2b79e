package service

import (
	"context"
	"strings"
	"time"

	"order-engine/internal/models"
	"order-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderService struct {
	repo    *repository.Repository
	catalog Catalog
	loyalty *LoyaltyEngine
	events  EventBus
	cache   OrderCache
	log     *zap.Logger
	now     func() time.Time
}

func NewOrderService(repo *repository.Repository, catalog Catalog, loyalty *LoyaltyEngine, events EventBus, cache OrderCache, log *zap.Logger) OrderService {
	return &orderService{
		repo:    repo,
		catalog: catalog,
		loyalty: loyalty,
		events:  events,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
}

// statusRank orders the forward states of the lifecycle. CANCELLED is
// handled separately: reachable from any non-terminal state.
var statusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusPayed:      2,
	models.OrderStatusShipped:    3,
	models.OrderStatusDelivered:  4,
}

func isTerminalStatus(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}

// canTransition permits forward moves only; the status never regresses.
func canTransition(from, to models.OrderStatus) bool {
	if isTerminalStatus(from) {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// --- cart ---

func (s *orderService) cartView(ctx context.Context, owner models.OwnerRef) (*CartView, error) {
	lines, err := s.repo.Lines.CartByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price)
	}
	return &CartView{Lines: lines, Subtotal: subtotal}, nil
}

func (s *orderService) GetCart(ctx context.Context) (*CartView, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.cartView(ctx, owner)
}

func (s *orderService) AddCartLine(ctx context.Context, productID uuid.UUID, quantity uint32) (*CartView, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, ErrQuantityInvalid
	}

	info, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrProductNotFound
	}
	if !info.IsActive {
		return nil, &InactiveProductsError{ProductIDs: []uuid.UUID{productID}}
	}

	line, err := s.repo.Lines.GetCartLine(ctx, owner, productID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		line = &models.OrderLine{
			BuyerID:   owner.BuyerID,
			SessionID: owner.SessionID,
			ProductID: productID,
		}
	}
	line.Quantity = quantity
	line.Price = info.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if err := s.repo.Lines.UpsertCartLine(ctx, line); err != nil {
		return nil, err
	}
	return s.cartView(ctx, owner)
}

func (s *orderService) RemoveCartLine(ctx context.Context, productID uuid.UUID) (*CartView, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	deleted, err := s.repo.Lines.DeleteCartLine(ctx, owner, productID)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrProductNotFound
	}
	return s.cartView(ctx, owner)
}

// --- lookup helpers ---

// getOwned loads an order visible to the caller: admins see every
// order, owners only their own.
func (s *orderService) getOwned(ctx context.Context, repo *repository.Repository, id uint) (*models.Order, error) {
	if IsAdmin(ctx) {
		ord, err := repo.Orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ord == nil {
			return nil, ErrOrderNotFound
		}
		return ord, nil
	}

	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	var ord *models.Order
	if owner.BuyerID != nil {
		ord, err = repo.Orders.GetByIDForBuyer(ctx, id, *owner.BuyerID)
	} else {
		ord, err = repo.Orders.GetByIDForSession(ctx, id, *owner.SessionID)
	}
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) getOwnedPending(ctx context.Context, repo *repository.Repository, id uint) (*models.Order, error) {
	ord, err := s.getOwned(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if ord.Status != models.OrderStatusPending {
		return nil, ErrOrderNotPending
	}
	return ord, nil
}

// reload fetches the fresh projection after a mutation and refreshes
// the cache.
func (s *orderService) reload(ctx context.Context, id uint) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if s.cache != nil {
		s.cache.SetOrder(ctx, ord)
	}
	return ord, nil
}

func (s *orderService) invalidate(ctx context.Context, id uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func ownerMatches(ord *models.Order, owner models.OwnerRef) bool {
	if owner.BuyerID != nil {
		return ord.BuyerID != nil && *ord.BuyerID == *owner.BuyerID
	}
	return ord.SessionID != nil && owner.SessionID != nil && *ord.SessionID == *owner.SessionID
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	if s.cache != nil {
		if ord, ok := s.cache.GetOrder(ctx, id); ok {
			if IsAdmin(ctx) {
				return ord, nil
			}
			owner, err := requireOwner(ctx)
			if err != nil {
				return nil, err
			}
			if ownerMatches(ord, owner) {
				return ord, nil
			}
			return nil, ErrOrderNotFound
		}
	}

	ord, err := s.getOwned(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetOrder(ctx, ord)
	}
	return ord, nil
}

// --- lifecycle ---

func (s *orderService) InitOrder(ctx context.Context) (*models.Order, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var orderID uint
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cart, err := tx.Lines.CartByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrCartEmpty
		}

		subtotal, err := resnapshotLines(ctx, s.catalog, tx.Lines, cart)
		if err != nil {
			return err
		}

		ord := &models.Order{
			BuyerID:        owner.BuyerID,
			SessionID:      owner.SessionID,
			Status:         models.OrderStatusPending,
			Subtotal:       subtotal,
			Discount:       decimal.Zero,
			Total:          subtotal,
			DeliveryMethod: models.DeliveryPickup,
		}
		if err := tx.Orders.Create(ctx, ord); err != nil {
			return err
		}
		if _, err := tx.Lines.LinkToOrder(ctx, owner, ord.ID); err != nil {
			return err
		}
		orderID = ord.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	ord, err := s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:   ord.ID,
			Guest:     ord.IsGuest(),
			Subtotal:  ord.Subtotal,
			CreatedAt: ord.CreatedAt,
		}); err != nil {
			s.log.Warn("failed to publish order created event", zap.Uint("order_id", ord.ID), zap.Error(err))
		}
	}
	return ord, nil
}

// rebookSlot reserves the bucket for (pointID, at) and releases the
// previously held slot, all inside the caller's transaction. When the
// request resolves to the bucket the order already holds, nothing
// moves.
func (s *orderService) rebookSlot(ctx context.Context, tx *repository.Repository, ord *models.Order, pointID uint, at time.Time) (*models.PickupSlot, error) {
	if ord.SlotID != nil {
		cur, err := tx.Slots.GetByID(ctx, *ord.SlotID)
		if err != nil {
			return nil, err
		}
		if cur != nil && cur.PickupPointID == pointID {
			point, err := tx.Points.GetByID(ctx, pointID)
			if err != nil {
				return nil, err
			}
			if point != nil {
				if loc, lerr := time.LoadLocation(point.Timezone); lerr == nil {
					if bucketStart(at, loc).Equal(cur.StartsAt) {
						return cur, nil
					}
				}
			}
		}
	}

	slot, err := reserveSlot(ctx, tx, pointID, at)
	if err != nil {
		return nil, err
	}
	if ord.SlotID != nil && *ord.SlotID != slot.ID {
		if err := releaseSlot(ctx, tx, *ord.SlotID); err != nil {
			return nil, err
		}
	}
	return slot, nil
}

func (s *orderService) SelectPickup(ctx context.Context, orderID, pointID uint, at time.Time) (*models.Order, error) {
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := s.getOwnedPending(ctx, tx, orderID)
		if err != nil {
			return err
		}
		prevSlot := ord.SlotID
		slot, err := s.rebookSlot(ctx, tx, ord, pointID, at)
		if err != nil {
			return err
		}
		changed, err := tx.Orders.UpdateFieldsIfSlot(ctx, orderID, prevSlot, map[string]any{
			"pickup_point_id": pointID,
			"slot_id":         slot.ID,
			"delivery_method": models.DeliveryPickup,
			"address":         nil,
		})
		if err != nil {
			return err
		}
		if !changed {
			// Параллельный запрос уже перевесил слот; откат транзакции
			// возвращает нашу бронь.
			return ErrOrderModified
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orderID)
	return s.reload(ctx, orderID)
}

func (s *orderService) ApplyCoupon(ctx context.Context, orderID uint, code string) (*models.Order, error) {
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := s.getOwnedPending(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if ord.CouponID != nil {
			return ErrCouponAlreadyApplied
		}

		coupon, err := tx.Coupons.GetByCode(ctx, NormalizeCouponCode(code))
		if err != nil {
			return err
		}
		if err := validateCoupon(coupon, s.now()); err != nil {
			return err
		}

		bumped, err := tx.Coupons.IncrementUsage(ctx, coupon.ID)
		if err != nil {
			return err
		}
		if !bumped {
			// Lost the race for the last remaining use.
			return ErrCouponUsageLimitReached
		}

		discount := ComputeDiscount(coupon, ord.Subtotal)
		attached, err := tx.Orders.AttachCoupon(ctx, orderID, coupon.ID, discount, ord.Subtotal.Sub(discount))
		if err != nil {
			return err
		}
		if !attached {
			// Параллельный запрос привязал купон первым; откат транзакции
			// снимает наш инкремент usage_count.
			return ErrCouponAlreadyApplied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orderID)
	return s.reload(ctx, orderID)
}

func (s *orderService) RemoveCoupon(ctx context.Context, orderID uint) (*models.Order, error) {
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := s.getOwnedPending(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if ord.CouponID == nil {
			return ErrNoCouponApplied
		}
		detached, err := tx.Orders.DetachCoupon(ctx, orderID, *ord.CouponID, ord.Subtotal)
		if err != nil {
			return err
		}
		if !detached {
			// Купон уже снят параллельным запросом; второго декремента
			// usage_count быть не должно.
			return ErrNoCouponApplied
		}
		if _, err := tx.Coupons.DecrementUsage(ctx, *ord.CouponID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orderID)
	return s.reload(ctx, orderID)
}

func (s *orderService) Finalize(ctx context.Context, orderID uint, in FinalizeInput) (*models.Order, error) {
	// Validation precedes any persistence.
	if in.PayLater && in.PaymentMethod != models.PaymentMethodCash {
		return nil, ErrPayLaterRequiresCash
	}
	switch in.DeliveryMethod {
	case models.DeliveryPickup:
		if in.PickupPointID == 0 || in.PickupAt.IsZero() {
			return nil, ErrPickupDetailsRequired
		}
	case models.DeliveryCourier:
		if strings.TrimSpace(in.Address) == "" {
			return nil, ErrAddressRequired
		}
	default:
		return nil, ErrPickupDetailsRequired
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := s.getOwnedPending(ctx, tx, orderID)
		if err != nil {
			return err
		}

		fields := map[string]any{
			"delivery_method": in.DeliveryMethod,
			"name":            in.Name,
			"email":           in.Email,
			"phone":           in.Phone,
			"payment_method":  in.PaymentMethod,
			"pay_later":       in.PayLater,
		}

		prevSlot := ord.SlotID
		switch in.DeliveryMethod {
		case models.DeliveryPickup:
			slot, err := s.rebookSlot(ctx, tx, ord, in.PickupPointID, in.PickupAt)
			if err != nil {
				return err
			}
			fields["pickup_point_id"] = in.PickupPointID
			fields["slot_id"] = slot.ID
			fields["address"] = nil
		case models.DeliveryCourier:
			if ord.SlotID != nil {
				if err := releaseSlot(ctx, tx, *ord.SlotID); err != nil {
					return err
				}
			}
			fields["pickup_point_id"] = nil
			fields["slot_id"] = nil
			fields["address"] = strings.TrimSpace(in.Address)
		}

		changed, err := tx.Orders.UpdateFieldsIfSlot(ctx, orderID, prevSlot, fields)
		if err != nil {
			return err
		}
		if !changed {
			// Слот перевесил параллельный запрос; откат транзакции
			// возвращает счётчики слотов в исходное состояние.
			return ErrOrderModified
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orderID)
	return s.reload(ctx, orderID)
}

// --- payments ---

func (s *orderService) CreatePayment(ctx context.Context, orderID uint, method models.PaymentMethod) (*models.Order, error) {
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := s.getOwnedPending(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if ord.PickupPointID == nil || ord.SlotID == nil {
			return ErrSlotNotAssigned
		}

		existing, err := tx.Payments.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPaymentExists
		}

		payment := &models.Payment{
			OrderID: orderID,
			Amount:  ord.Total,
			Method:  method,
			Status:  models.PaymentStatusPending,
		}
		if err := tx.Payments.Create(ctx, payment); err != nil {
			return err
		}

		moved, err := tx.Orders.UpdateStatusFrom(ctx, orderID, models.OrderStatusPending, models.OrderStatusProcessing)
		if err != nil {
			return err
		}
		if !moved {
			return ErrOrderNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, orderID)
	return s.reload(ctx, orderID)
}

// completePayment flips the payment to COMPLETED and the order to
// PAYED in one transaction, then accrues loyalty cashback — skipped
// entirely for guest orders, which have no loyalty owner.
func (s *orderService) completePayment(ctx context.Context, orderID uint, manual bool) (*models.Order, error) {
	var payed *OrderPayedEvent
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}

		payment, err := tx.Payments.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if manual && payment.Method != models.PaymentMethodCash {
			return ErrManualCompleteCashOnly
		}

		completed, err := tx.Payments.UpdateStatusFrom(ctx, payment.ID, models.PaymentStatusPending, models.PaymentStatusCompleted)
		if err != nil {
			return err
		}
		if !completed {
			return ErrPaymentNotPending
		}

		moved, err := tx.Orders.UpdateStatusFrom(ctx, orderID, models.OrderStatusProcessing, models.OrderStatusPayed)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}

		bonus := decimal.Zero
		if ord.BuyerID != nil {
			bonus, err = s.loyalty.Accrue(ctx, tx, *ord.BuyerID, orderID, ord.Total)
			if err != nil {
				return err
			}
		}
		payed = &OrderPayedEvent{
			OrderID:     orderID,
			Guest:       ord.IsGuest(),
			Total:       ord.Total,
			BonusEarned: bonus,
			PayedAt:     s.now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, orderID)
	if s.events != nil && payed != nil {
		if err := s.events.PublishOrderPayed(ctx, *payed); err != nil {
			s.log.Warn("failed to publish order payed event", zap.Uint("order_id", orderID), zap.Error(err))
		}
	}
	return s.reload(ctx, orderID)
}

func (s *orderService) CompleteCashPayment(ctx context.Context, orderID uint) (*models.Order, error) {
	if !IsAdmin(ctx) {
		return nil, ErrForbidden
	}
	return s.completePayment(ctx, orderID, true)
}

func (s *orderService) CompleteGatewayPayment(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.completePayment(ctx, orderID, false)
}

// --- admin ---

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !IsAdmin(ctx) {
		return nil, ErrForbidden
	}

	var cancelled bool
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}
		if !canTransition(ord.Status, status) {
			return ErrInvalidTransition
		}

		moved, err := tx.Orders.UpdateStatusFrom(ctx, orderID, ord.Status, status)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}

		// Cancellation frees the held pickup capacity; the slot row is
		// kept referenced for history.
		if status == models.OrderStatusCancelled {
			cancelled = true
			if ord.SlotID != nil {
				if err := releaseSlot(ctx, tx, *ord.SlotID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, orderID)
	if s.events != nil && cancelled {
		if err := s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{OrderID: orderID, CancelledAt: s.now()}); err != nil {
			s.log.Warn("failed to publish order cancelled event", zap.Uint("order_id", orderID), zap.Error(err))
		}
	}
	return s.reload(ctx, orderID)
}

// --- loyalty ---

func (s *orderService) BonusBalance(ctx context.Context) (decimal.Decimal, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if owner.BuyerID == nil {
		return decimal.Zero, ErrForbidden
	}
	return s.loyalty.Balance(ctx, s.repo, *owner.BuyerID)
}
