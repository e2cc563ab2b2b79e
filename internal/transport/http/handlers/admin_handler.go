package handlers

import (
	"net/http"

	"order-engine/internal/models"
	"order-engine/internal/service"
	"order-engine/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewAdminHandler(orders service.OrderService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{orders: orders, log: log}
}

// UpdateStatus godoc
// @Summary Сменить статус заказа
// @Description Переходы только вперёд; CANCELLED освобождает слот выдачи
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID заказа"
// @Param status body dto.UpdateStatusRequest true "Новый статус"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.InvalidStateErrorResponse "Недопустимый переход"
// @Router /api/v1/admin/orders/{id}/status [post]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "status updated"))
}

// Finalize godoc
// @Summary Финализировать заказ оператором
// @Description То же оформление, что и у владельца, но для любого PENDING-заказа
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID заказа"
// @Param checkout body dto.FinalizeRequest true "Данные оформления"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.InvalidStateErrorResponse "Заказ не в PENDING"
// @Router /api/v1/admin/orders/{id}/finalize [post]
func (h *AdminHandler) Finalize(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req dto.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid admin finalize request", zap.Error(err))
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

// CompleteCashPayment godoc
// @Summary Подтвердить оплату наличными
// @Description Ручное подтверждение оператором, только для способа CASH
// @Tags admin
// @Produce json
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.InvalidStateErrorResponse "Платёж не в PENDING или способ не CASH"
// @Router /api/v1/admin/orders/{id}/payment/complete [post]
func (h *AdminHandler) CompleteCashPayment(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.orders.CompleteCashPayment(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "cash payment completed"))
}

// GatewayCallback godoc
// @Summary Колбэк платёжного шлюза
// @Description Вызывается Robokassa после успешной оплаты
// @Tags payments
// @Accept json
// @Produce json
// @Param callback body dto.GatewayCallbackRequest true "ID заказа из шлюза"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.InvalidStateErrorResponse "Платёж не в PENDING"
// @Router /api/v1/payments/robokassa/callback [post]
func (h *AdminHandler) GatewayCallback(c *gin.Context) {
	var req dto.GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid gateway callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	order, err := h.orders.CompleteGatewayPayment(c.Request.Context(), req.OrderID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, "payment completed"))
}
