package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/gin-gonic/gin"
)

func RateProduct(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var input models.RatingInput
	if err := ctx.ShouldBind(&input); err != nil {
		sendValidationError(ctx, err)
		return
	}

	rating, err := services.RateProduct(initializers.DB, currentUserID(ctx), slug, input)
	if err != nil {
		handleServiceError(ctx, err, "/product/"+slug)
		return
	}

	avg, err := services.AverageRating(initializers.DB, rating.ProductID)
	if err != nil {
		handleServiceError(ctx, err, "/product/"+slug)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message":       "Thanks for rating this product!",
		"rating":        rating,
		"averageRating": avg,
		"redirect":      "/product/" + slug,
	})
}
