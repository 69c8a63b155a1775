package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

const AdminSessionCookie = "admin_session"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth accepts a learner bearer token from the Authorization header or,
// for EventSource clients that cannot set headers, the token query parameter.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("bearer rejected", "path", c.FullPath(), "error", err)
			abortUnauthorized(c, err.Error())
			return
		}
		c.Request = c.Request.WithContext(ctx)
		ld := ctxutil.GetLearnerData(ctx)
		if ld == nil || ld.LearnerID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "forbidden"},
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin checks the admin_session cookie set by the admin login route.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(AdminSessionCookie)
		if err != nil || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		if err := am.authService.VerifyAdminSession(raw); err != nil {
			am.log.Debug("admin session rejected", "error", err)
			abortUnauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": msg, "code": "unauthorized"},
	})
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
