package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/gin-gonic/gin"
)

const (
	orderCookie  = "order_id"
	checkoutPage = "/checkout"
)

func frontendURL(path string, orderID uint) string {
	return fmt.Sprintf("%s%s?order=%d", initializers.AppConfig.FrontendURL, path, orderID)
}

// GetCheckout returns the cart with the form pre-filled from the account.
func GetCheckout(ctx *gin.Context) {
	userID := currentUserID(ctx)
	cart, err := services.CartFor(initializers.DB, userID)
	if err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}
	if len(cart.Items) == 0 {
		handleServiceError(ctx, services.ErrEmptyCart, cartPage)
		return
	}

	var user models.User
	if err := initializers.DB.First(&user, userID).Error; err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"cart":  cart,
		"total": cart.Total(),
		"form": models.CheckoutData{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

// Checkout creates the order from the cart and remembers it for the payment step.
func Checkout(ctx *gin.Context) {
	var checkoutData models.CheckoutData
	if err := ctx.ShouldBind(&checkoutData); err != nil {
		sendValidationError(ctx, err)
		return
	}

	order, err := services.Checkout(initializers.DB, currentUserID(ctx), checkoutData)
	if err != nil {
		handleServiceError(ctx, err, cartPage)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(orderCookie, strconv.FormatUint(uint64(order.ID), 10), 24*60*60, "/", "", secureCookies(), true)
	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":  "Order created successfully. Redirect user to payment.",
		"order":    order,
		"redirect": "/payment/process?order_id=" + strconv.FormatUint(uint64(order.ID), 10),
	})
}

// ProcessPayment hands the order to the gateway and redirects the browser to
// the hosted payment page.
func ProcessPayment(ctx *gin.Context) {
	raw := ctx.Query(orderCookie)
	if raw == "" {
		raw, _ = ctx.Cookie(orderCookie)
	}
	orderID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || orderID == 0 {
		sendWarningResponse(ctx, "No order to pay for.", cartPage)
		return
	}

	redirectURL, err := services.InitiatePayment(ctx.Request.Context(), initializers.DB, initializers.Gateway,
		initializers.PaymentSettings(), currentUserID(ctx), uint(orderID))
	if err != nil {
		handleServiceError(ctx, err, checkoutPage)
		return
	}
	ctx.Redirect(http.StatusSeeOther, redirectURL)
}

// PaymentSuccess is the gateway's browser redirect after payment. It has no
// session of its own: the payment is verified with the gateway, then the
// order's owner is logged in.
func PaymentSuccess(ctx *gin.Context) {
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		return
	}

	result, err := services.ConfirmPayment(ctx.Request.Context(), initializers.DB, initializers.Gateway, initializers.Notifier,
		initializers.PaymentSettings(), orderID, ctx.Query("OrderTrackingId"))
	if err != nil {
		handleServiceError(ctx, err, checkoutPage)
		return
	}

	switch result.Outcome {
	case services.OutcomeFailed:
		ctx.Redirect(http.StatusSeeOther, frontendURL("/payment/fail", orderID))
		return
	case services.OutcomePending:
		ctx.Redirect(http.StatusSeeOther, frontendURL("/payment/pending", orderID))
		return
	}

	var owner models.User
	if err := initializers.DB.First(&owner, result.Order.UserID).Error; err != nil {
		log.Println("Order owner lookup failed:", err)
	} else if _, err := startSession(ctx, owner); err != nil {
		log.Println("JWT generation error:", err)
	}
	ctx.SetCookie(orderCookie, "", -1, "/", "", secureCookies(), true)
	ctx.Redirect(http.StatusSeeOther, frontendURL("/payment/success", orderID))
}

func PaymentFail(ctx *gin.Context) {
	cancelPayment(ctx, "/payment/fail")
}

func PaymentCancel(ctx *gin.Context) {
	cancelPayment(ctx, "/payment/cancel")
}

// cancelPayment cancels the caller's unpaid order. A paid order is left as is.
func cancelPayment(ctx *gin.Context, page string) {
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		return
	}
	if _, err := services.CancelOrder(initializers.DB, currentUserID(ctx), orderID); err != nil {
		handleServiceError(ctx, err, checkoutPage)
		return
	}
	ctx.Redirect(http.StatusSeeOther, frontendURL(page, orderID))
}

// HandlePesapalIPN receives the gateway's server-to-server payment notification.
func HandlePesapalIPN(ctx *gin.Context) {
	var trackingId, merchantRef string

	if ctx.Request.Method == http.MethodPost {
		var payload struct {
			OrderTrackingId        string `json:"OrderTrackingId"`
			OrderMerchantReference string `json:"OrderMerchantReference"`
		}
		if err := ctx.ShouldBindJSON(&payload); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid JSON")
			return
		}
		trackingId = payload.OrderTrackingId
		merchantRef = payload.OrderMerchantReference
	} else {
		trackingId = ctx.Query("OrderTrackingId")
		merchantRef = ctx.Query("OrderMerchantReference")
	}

	if trackingId == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, "Missing parameters")
		return
	}

	status := http.StatusOK
	result, err := services.HandleNotification(ctx.Request.Context(), initializers.DB, initializers.Gateway, initializers.Notifier,
		initializers.PaymentSettings(), trackingId, merchantRef)
	if err != nil {
		log.Printf("IPN for %s failed: %v", trackingId, err)
		status = http.StatusInternalServerError
	} else {
		log.Printf("IPN for order %d: %s", result.Order.ID, result.Outcome)
	}

	ctx.JSON(status, gin.H{
		"orderNotificationType":  "IPNCHANGE",
		"orderTrackingId":        trackingId,
		"orderMerchantReference": merchantRef,
		"status":                 status,
	})
}

func GetOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))

	result, err := services.AllOrders(initializers.DB, page, limit)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orders": result.Orders,
		"metadata": gin.H{
			"total":       result.Total,
			"currentPage": result.Page,
			"limit":       result.Limit,
			"hasPrevPage": result.Page > 1,
			"hasNextPage": int64(result.Page*result.Limit) < result.Total,
		},
	})
}

// UpdateOrderStatus only supports marking a paid order as delivered; every
// other transition belongs to the payment flow.
func UpdateOrderStatus(ctx *gin.Context) {
	var orderStatusData models.OrderStatusData
	if err := ctx.ShouldBindJSON(&orderStatusData); err != nil {
		sendValidationError(ctx, err)
		return
	}
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		return
	}
	if orderStatusData.Status != models.OrderStatusDelivered {
		handleServiceError(ctx, fmt.Errorf("%w: cannot set %q", services.ErrInvalidTransition, orderStatusData.Status), "/")
		return
	}

	order, err := services.MarkDelivered(initializers.DB, orderID)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully.", "order": order})
}
