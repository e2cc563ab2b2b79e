package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"order-engine/internal/service"
	"order-engine/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError переводит доменные ошибки сервиса в HTTP-ответ.
// Неизвестные ошибки логируются и отдаются как 500 без деталей.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	var inactive *service.InactiveProductsError
	if errors.As(err, &inactive) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewUnavailableError(
			"some products are no longer available",
			fmt.Sprintf("inactive products: %v", inactive.ProductIDs),
		))
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError(err.Error()))

	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrSlotNotFound),
		errors.Is(err, service.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))

	case errors.Is(err, service.ErrSlotFull),
		errors.Is(err, service.ErrOrderModified),
		errors.Is(err, service.ErrPaymentExists),
		errors.Is(err, service.ErrCouponAlreadyApplied),
		errors.Is(err, service.ErrCouponUsageLimitReached):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))

	case errors.Is(err, service.ErrOrderNotPending),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPaymentNotPending),
		errors.Is(err, service.ErrNoCouponApplied),
		errors.Is(err, service.ErrSlotNotAssigned),
		errors.Is(err, service.ErrManualCompleteCashOnly):
		c.JSON(http.StatusConflict, dto.NewInvalidStateError(err.Error()))

	case errors.Is(err, service.ErrPickupPointUnavailable):
		c.JSON(http.StatusUnprocessableEntity, dto.NewUnavailableError(err.Error(), ""))

	case errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrOutsideServiceHours),
		errors.Is(err, service.ErrPayLaterRequiresCash),
		errors.Is(err, service.ErrAddressRequired),
		errors.Is(err, service.ErrPickupDetailsRequired),
		errors.Is(err, service.ErrCouponInactive),
		errors.Is(err, service.ErrCouponNotYetValid),
		errors.Is(err, service.ErrCouponExpired):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))

	default:
		log.Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
