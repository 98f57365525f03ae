package middlewares

import (
	"net/http"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after RequireAuth. The role is read from the
// users table so a demoted account loses access before its token expires.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("userId")
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}

		var user models.User
		if err := initializers.DB.Select("id", "role").First(&user, userID).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}
		if user.Role != models.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}

		ctx.Next()
	}
}
