package middlewares

import (
	"net/http"
	"strings"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/gin-gonic/gin"
)

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie set at login.
func tokenFromRequest(ctx *gin.Context) string {
	const prefix = "Bearer "
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	if cookie, err := ctx.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// authenticate stores the token's claims under "user" and the numeric id under
// "userId". It reports whether a valid token was present.
func authenticate(ctx *gin.Context) bool {
	tokenString := tokenFromRequest(ctx)
	if tokenString == "" {
		return false
	}
	claims, err := utils.ParseJWT(tokenString, initializers.AppConfig.JWTSecret)
	if err != nil {
		return false
	}
	userID, ok := utils.UserIDFromClaims(claims)
	if !ok {
		return false
	}
	ctx.Set("user", claims)
	ctx.Set("userId", userID)
	return true
}

func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !authenticate(ctx) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "redirect": "/auth/login"})
			return
		}
		ctx.Next()
	}
}

// OptionalAuth identifies the caller when possible but lets anonymous
// requests through.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authenticate(ctx)
		ctx.Next()
	}
}
