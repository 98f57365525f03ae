package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/gin-gonic/gin"
)

const cartPage = "/cart"

func sendCart(ctx *gin.Context, status int, message string) {
	cart, err := services.CartFor(initializers.DB, currentUserID(ctx))
	if err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}
	body := gin.H{"cart": cart, "total": cart.Total()}
	if message != "" {
		body["message"] = message
	}
	sendJSONResponse(ctx, status, body)
}

// bindQuantity reads the optional quantity field. An empty body means fallback.
func bindQuantity(ctx *gin.Context, fallback int) (int, bool) {
	var input models.CartQuantityInput
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBind(&input); err != nil {
			sendValidationError(ctx, err)
			return 0, false
		}
	}
	if input.Quantity == nil {
		return fallback, true
	}
	return *input.Quantity, true
}

func GetCart(ctx *gin.Context) {
	sendCart(ctx, http.StatusOK, "")
}

func AddToCart(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "productId")
	if !ok {
		return
	}
	quantity, ok := bindQuantity(ctx, 1)
	if !ok {
		return
	}

	item, err := services.AddToCart(initializers.DB, currentUserID(ctx), productID, quantity)
	if err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}
	sendCart(ctx, http.StatusOK, item.Product.Name+" added to cart")
}

func UpdateCartItem(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "productId")
	if !ok {
		return
	}
	var input models.CartQuantityInput
	if err := ctx.ShouldBind(&input); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if input.Quantity == nil {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": gin.H{"quantity": "this field is required"}})
		return
	}

	item, err := services.UpdateCartItem(initializers.DB, currentUserID(ctx), productID, *input.Quantity)
	if err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}
	if item == nil {
		sendCart(ctx, http.StatusOK, "Item removed from cart")
		return
	}
	sendCart(ctx, http.StatusOK, "Cart updated")
}

func RemoveFromCart(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "productId")
	if !ok {
		return
	}

	item, err := services.RemoveFromCart(initializers.DB, currentUserID(ctx), productID)
	if err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}
	sendCart(ctx, http.StatusOK, item.Product.Name+" removed from cart")
}
