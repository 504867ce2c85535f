package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onboarding-reminders/internal/utils"
)

// NonceHeader carries the single-use nonce on dispatch actions.
const NonceHeader = "X-Dispatch-Nonce"

// AdminAuth guards the admin API with a shared token, accepted either as a
// bearer token or in the X-Admin-Token header.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-Admin-Token")
		if supplied == "" {
			authz := c.GetHeader("Authorization")
			if strings.HasPrefix(authz, "Bearer ") {
				supplied = strings.TrimPrefix(authz, "Bearer ")
			}
		}

		if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		c.Next()
	}
}

// RequireNonce rejects requests that do not spend a valid single-use nonce.
// Applied on top of AdminAuth for the dispatch actions, which actually send
// mail and must not be replayable.
func RequireNonce(store *NonceStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce := c.GetHeader(NonceHeader)
		if nonce == "" {
			nonce = c.Query("nonce")
		}

		if !store.Consume(c.Request.Context(), nonce) {
			log.Warn("dispatch request rejected, invalid nonce",
				zap.String("path", c.FullPath()),
				zap.String("client_ip", utils.GetRealClientIP(c)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid or expired nonce",
			})
			return
		}

		c.Next()
	}
}
