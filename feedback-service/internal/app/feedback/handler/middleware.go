package handler

import (
	"net/http"

	"guestvoice/feedback-service/internal/app/feedback/config"
	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthMiddleware защищает админские маршруты basic auth'ом
// Пароль сверяется с bcrypt-хэшем из конфигурации
type AdminAuthMiddleware struct {
	username     string
	passwordHash string
}

// NewAdminAuthMiddleware создает middleware админской аутентификации
func NewAdminAuthMiddleware(cfg config.AdminConfig) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
	}
}

// Authenticate проверяет учётные данные запроса
func (m *AdminAuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || username != m.username ||
			bcrypt.CompareHashAndPassword([]byte(m.passwordHash), []byte(password)) != nil {
			logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("remote_addr", c.ClientIP()).
				Msg("Unauthorized admin request")

			c.Header("WWW-Authenticate", `Basic realm="Admin Area"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		c.Next()
	}
}
