package middleware

import (
	"net/http"

	"order-engine/internal/models"
	"order-engine/internal/service"
	"order-engine/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Заголовки идентификации владельца корзины/заказа.
// X-User-Id выставляется шлюзом после проверки токена,
// X-Session-Id присылает фронт для гостевой сессии.
const (
	HeaderUserID    = "X-User-Id"
	HeaderSessionID = "X-Session-Id"
	HeaderAdminKey  = "X-Admin-Key"
)

// OwnerRequired извлекает владельца из заголовков и кладёт его в context запроса.
// Приоритет у X-User-Id: авторизованный пользователь перекрывает гостевую сессию.
func OwnerRequired(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var owner models.OwnerRef

		if raw := c.GetHeader(HeaderUserID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				log.Warn("invalid user id header", zap.String("value", raw))
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid X-User-Id header"))
				return
			}
			owner = models.BuyerRef(id)
		} else if raw := c.GetHeader(HeaderSessionID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				log.Warn("invalid session id header", zap.String("value", raw))
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid X-Session-Id header"))
				return
			}
			owner = models.GuestRef(id)
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing X-User-Id or X-Session-Id header"))
			return
		}

		ctx := service.WithOwner(c.Request.Context(), owner)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminRequired пропускает только запросы с правильным админским ключом.
// Ключ раздаётся внутренним сервисам, наружу группа /admin не публикуется.
func AdminRequired(adminKey string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(HeaderAdminKey)
		if adminKey == "" || got != adminKey {
			log.Warn("admin access denied", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("admin access required"))
			return
		}
		ctx := service.WithAdmin(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
