package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrProductUnavailable = errors.New("product is not available")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrNotPurchased       = errors.New("you can only rate products you have purchased")
	ErrOrderNotPayable    = errors.New("order can no longer be paid")
	ErrPaymentNotVerified = errors.New("payment could not be verified")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrCategoryInUse      = errors.New("category has products that were ordered")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// notFound translates gorm's missing-row error so callers only deal with ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
