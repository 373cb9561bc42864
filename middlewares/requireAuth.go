package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AliRajag51/bookstore-backend/utils"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// SessionVerifier validates a session credential.
type SessionVerifier interface {
	Verify(token string) (utils.SessionClaims, error)
}

// RequireAuth admits requests carrying a valid session, from the cookie or
// from an Authorization bearer header.
func RequireAuth(sessions SessionVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := sessions.Verify(sessionToken(ctx))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		ctx.Set(userIDKey, claims.UserID)
		ctx.Set(roleKey, claims.Role)
		ctx.Next()
	}
}

func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(utils.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// UserID returns the authenticated user's id. It is zero outside RequireAuth.
func UserID(ctx *gin.Context) uint {
	return ctx.GetUint(userIDKey)
}

func Role(ctx *gin.Context) string {
	return ctx.GetString(roleKey)
}
