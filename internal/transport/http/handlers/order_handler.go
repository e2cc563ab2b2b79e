package handlers

import (
	"net/http"
	"strconv"

	"order-engine/internal/models"
	"order-engine/internal/service"
	"order-engine/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func cartResponse(cart *service.CartView, msg string) dto.CartResponse {
	resp := dto.CartResponse{
		Lines:    make([]dto.OrderLineView, 0, len(cart.Lines)),
		Subtotal: cart.Subtotal,
		Message:  msg,
	}
	for _, l := range cart.Lines {
		resp.Lines = append(resp.Lines, dto.NewOrderLineView(l))
	}
	return resp
}

func orderResponse(o *models.Order, msg string) dto.OrderResponse {
	return dto.OrderResponse{Order: dto.NewOrderView(o), Message: msg}
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return 0, false
	}
	return uint(id), true
}

// GetCart godoc
// @Summary Текущая корзина
// @Description Возвращает открытую корзину владельца (позиции без заказа)
// @Tags cart
// @Produce json
// @Success 200 {object} dto.CartResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/v1/cart [get]
func (h *OrderHandler) GetCart(c *gin.Context) {
	cart, err := h.orders.GetCart(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart, "cart"))
}

// AddCartItem godoc
// @Summary Добавить товар в корзину
// @Description Добавляет позицию или заменяет количество существующей
// @Tags cart
// @Accept json
// @Produce json
// @Param item body dto.AddCartItemRequest true "Товар и количество"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Failure 422 {object} dto.UnavailableErrorResponse "Товар деактивирован"
// @Router /api/v1/cart/items [post]
func (h *OrderHandler) AddCartItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid add cart item request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
		return
	}

	cart, err := h.orders.AddCartLine(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart, "item added"))
}

// RemoveCartItem godoc
// @Summary Убрать товар из корзины
// @Tags cart
// @Produce json
// @Param productID path string true "ID товара"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/cart/items/{productID} [delete]
func (h *OrderHandler) RemoveCartItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
		return
	}

	cart, err := h.orders.RemoveCartLine(c.Request.Context(), productID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart, "item removed"))
}

// InitOrder godoc
// @Summary Создать заказ из корзины
// @Description Переводит открытую корзину в заказ PENDING, цены пересчитываются по каталогу
// @Tags orders
// @Produce json
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Пустая корзина"
// @Failure 422 {object} dto.UnavailableErrorResponse "В корзине деактивированные товары"
// @Router /api/v1/orders [post]
func (h *OrderHandler) InitOrder(c *gin.Context) {
	order, err := h.orders.InitOrder(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, orderResponse(order, "order created"))
}

// GetOrder godoc
// @Summary Получить заказ
// @Tags orders
// @Produce json
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "order"))
}

// SelectPickup godoc
// @Summary Выбрать пункт выдачи и время
// @Description Бронирует часовой слот, перенос освобождает предыдущий
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "ID заказа"
// @Param pickup body dto.SelectPickupRequest true "Пункт и время"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Вне окна обслуживания"
// @Failure 409 {object} dto.ConflictErrorResponse "Слот заполнен"
// @Failure 422 {object} dto.UnavailableErrorResponse "Пункт недоступен"
// @Router /api/v1/orders/{id}/pickup [post]
func (h *OrderHandler) SelectPickup(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req dto.SelectPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid pickup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	order, err := h.orders.SelectPickup(c.Request.Context(), id, req.PickupPointID, req.Time)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "pickup slot reserved"))
}

// ApplyCoupon godoc
// @Summary Применить купон
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "ID заказа"
// @Param coupon body dto.ApplyCouponRequest true "Код купона"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Купон не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Купон уже применён или исчерпан"
// @Router /api/v1/orders/{id}/coupon [post]
func (h *OrderHandler) ApplyCoupon(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req dto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	order, err := h.orders.ApplyCoupon(c.Request.Context(), id, req.Code)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "coupon applied"))
}

// RemoveCoupon godoc
// @Summary Снять купон
// @Tags orders
// @Produce json
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.InvalidStateErrorResponse "Купон не применён"
// @Router /api/v1/orders/{id}/coupon [delete]
func (h *OrderHandler) RemoveCoupon(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.orders.RemoveCoupon(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "coupon removed"))
}

// Finalize godoc
// @Summary Финализировать заказ
// @Description Фиксирует способ доставки, контакты и способ оплаты
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "ID заказа"
// @Param checkout body dto.FinalizeRequest true "Данные оформления"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} dto.InvalidStateErrorResponse "Заказ не в PENDING"
// @Router /api/v1/orders/{id}/finalize [post]
func (h *OrderHandler) Finalize(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req dto.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid finalize request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	in := service.FinalizeInput{
		DeliveryMethod: models.DeliveryMethod(req.DeliveryMethod),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		PayLater:       req.PayLater,
		Address:        req.Address,
		PickupPointID:  req.PickupPointID,
	}
	if req.Time != nil {
		in.PickupAt = *req.Time
	}

	order, err := h.orders.Finalize(c.Request.Context(), id, in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "order finalized"))
}

// CreatePayment godoc
// @Summary Создать платёж
// @Description Создаёт платёж PENDING и переводит заказ в PROCESSING
// @Tags payments
// @Accept json
// @Produce json
// @Param id path int true "ID заказа"
// @Param payment body dto.CreatePaymentRequest true "Способ оплаты"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Платёж уже существует"
// @Router /api/v1/orders/{id}/payment [post]
func (h *OrderHandler) CreatePayment(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	order, err := h.orders.CreatePayment(c.Request.Context(), id, models.PaymentMethod(req.Method))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "payment created"))
}

// BonusBalance godoc
// @Summary Баланс бонусов
// @Description Доступно только авторизованным покупателям
// @Tags bonus
// @Produce json
// @Success 200 {object} dto.BalanceResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Гостям бонусы недоступны"
// @Router /api/v1/bonus/balance [get]
func (h *OrderHandler) BonusBalance(c *gin.Context) {
	balance, err := h.orders.BonusBalance(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Balance: balance})
}
