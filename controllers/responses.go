package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Kariqs/amexan-shop/services"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidInput        = "invalid input"
	msgInternalServerError = "Internal server error"
	msgGatewayUnavailable  = "We could not reach the payment provider. Please try again."
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// sendWarningResponse reports a rejected action along with the page the
// client should go back to.
func sendWarningResponse(ctx *gin.Context, warning, redirect string) {
	sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"warning": warning, "redirect": redirect})
}

func sendValidationError(ctx *gin.Context, err error) {
	fields := utils.FieldErrors(err)
	if fields == nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": fields})
}

// handleServiceError maps service errors onto HTTP responses. redirect is
// used for business-rule warnings.
func handleServiceError(ctx *gin.Context, err error, redirect string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrNotPurchased),
		errors.Is(err, services.ErrProductUnavailable):
		sendWarningResponse(ctx, rootMessage(err), redirect)
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrPaymentNotVerified):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOrderNotPayable),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrDuplicateSlug),
		errors.Is(err, services.ErrCategoryInUse):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrGatewayUnavailable):
		log.Println("Payment gateway error:", err)
		sendJSONResponse(ctx, http.StatusBadGateway, gin.H{"message": msgGatewayUnavailable, "redirect": "/checkout"})
	default:
		log.Println("Unexpected error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
	}
}

// rootMessage drops wrapping context so warnings read as plain sentences.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func currentUserID(ctx *gin.Context) uint {
	return ctx.GetUint("userId")
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse "+name)
		return 0, false
	}
	return uint(id), true
}
