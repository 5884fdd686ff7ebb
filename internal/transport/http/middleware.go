package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

const identityContextKey = "cart-identity"

// Заголовки legacy-поверхности: идентичность напрямую, без bearer-токена.
const (
	headerTableID = "table-id"
	headerUserID  = "user-id"
)

// IdentityMiddleware извлекает идентичность (стол, пользователь) из запроса.
// Основной путь — bearer JWT с клеймами user_id и table; для legacy-клиентов
// поддерживаются заголовки table-id/user-id. Сам выпуск и жизненный цикл
// токенов — зона внешнего auth-сервиса.
func IdentityMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := identityFromBearer(c, jwtSecret); ok {
			c.Set(identityContextKey, identity)
			c.Next()
			return
		}

		if userID := c.GetHeader(headerUserID); userID != "" {
			c.Set(identityContextKey, domain.Identity{
				TableID: c.GetHeader(headerTableID),
				UserID:  userID,
			})
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		c.Abort()
	}
}

func identityFromBearer(c *gin.Context, jwtSecret string) (domain.Identity, bool) {
	if jwtSecret == "" {
		return domain.Identity{}, false
	}

	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return domain.Identity{}, false
	}
	tokenStr := strings.TrimPrefix(h, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, false
	}

	var identity domain.Identity
	if v, ok := claims["user_id"].(string); ok {
		identity.UserID = v
	} else if v, ok := claims["sub"].(string); ok {
		identity.UserID = v
	}
	if v, ok := claims["table"].(string); ok {
		identity.TableID = v
	}

	return identity, identity.UserID != ""
}

// callerIdentity достаёт идентичность, положенную IdentityMiddleware.
func callerIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

// CORSMiddleware разрешает браузерным клиентам ходить на API.
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Idempotency-Key", headerTableID, headerUserID},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	return cors.New(cfg)
}
