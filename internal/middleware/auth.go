package middleware

import (
	"errors"
	"net/http"
	"strings"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/logger"
	"searchapp_backend/pkg/apperrors"
	"searchapp_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет Bearer JWT и кладет auth.Principal в контекст
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := auth.ParseToken(tokenStr, secret)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Rejected token", "error", err.Error())
			if errors.Is(err, auth.ErrTokenExpired) {
				apperrors.HandleError(c, apperrors.New(apperrors.CodeTokenExpired, "auth", "Token expired", http.StatusUnauthorized))
				return
			}
			apperrors.HandleError(c, apperrors.New(apperrors.CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized))
			return
		}

		principal := claims.Principal()
		ctx := logger.WithUserID(c.Request.Context(), principal.UserID)
		ctx = logger.WithCompanyID(ctx, principal.CompanyID)
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(contextkeys.PrincipalContextKey), principal)
		c.Next()
	}
}

// RequirePermission - middleware проверки разрешения роли
func RequirePermission(permission auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !principal.Can(permission) {
			apperrors.HandleError(c, apperrors.ErrRoleNotAllowed(string(principal.Role), string(permission)))
			return
		}
		c.Next()
	}
}

// GetPrincipal извлекает principal из контекста
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	val, exists := c.Get(string(contextkeys.PrincipalContextKey))
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := val.(auth.Principal)
	return principal, ok
}
