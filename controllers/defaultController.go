package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/gin-gonic/gin"
)

// GetHome returns the newest products and the category menu.
func GetHome(ctx *gin.Context) {
	products, err := services.FeaturedProducts(initializers.DB)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	categories, err := services.Categories(initializers.DB)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"products":   products,
		"categories": categories,
	})
}
