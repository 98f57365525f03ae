package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/gin-gonic/gin"
)

// GetProfile shows the account, or the order history with ?tab=orders.
func GetProfile(ctx *gin.Context) {
	userID := currentUserID(ctx)

	if ctx.Query("tab") == "orders" {
		orders, err := services.UserOrders(initializers.DB, userID)
		if err != nil {
			handleServiceError(ctx, err, "/profile")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"tab": "orders", "orders": orders})
		return
	}

	var user models.User
	if err := initializers.DB.First(&user, userID).Error; err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"tab": "account", "user": user})
}
