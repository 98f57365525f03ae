package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Gateway interface {
	SubmitOrder(ctx context.Context, req utils.PaymentRequest) (*utils.PaymentSession, error)
	TransactionStatus(ctx context.Context, trackingID string) (*utils.TransactionStatus, error)
}

type Notifier interface {
	SendOrderConfirmation(order *models.Order) error
}

type PaymentSettings struct {
	BaseURL  string
	Currency string
	Country  string
	Timeout  time.Duration
}

type PaymentOutcome string

const (
	OutcomePaid        PaymentOutcome = "paid"
	OutcomeAlreadyPaid PaymentOutcome = "already_paid"
	OutcomeFailed      PaymentOutcome = "failed"
	OutcomePending     PaymentOutcome = "pending"
)

type PaymentResult struct {
	Order   *models.Order
	Outcome PaymentOutcome
}

func (s PaymentSettings) callbackURL(kind string, orderID uint) string {
	return fmt.Sprintf("%s/payment/%s/%d", s.BaseURL, kind, orderID)
}

// InitiatePayment hands an unpaid order of the user to the gateway and returns
// the hosted payment page. A gateway error leaves the order pending so the
// user can retry.
func InitiatePayment(ctx context.Context, db *gorm.DB, gw Gateway, settings PaymentSettings, userID, orderID uint) (string, error) {
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		return "", notFound(err, "order")
	}
	if order.Paid || order.Status != models.OrderStatusPending {
		return "", ErrOrderNotPayable
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	session, err := gw.SubmitOrder(ctx, utils.PaymentRequest{
		ID:              order.MerchantReference(),
		Currency:        settings.Currency,
		Amount:          order.Total.InexactFloat64(),
		Description:     fmt.Sprintf("Payment for order #%d", order.ID),
		CallbackURL:     settings.callbackURL("success", order.ID),
		CancellationURL: settings.callbackURL("cancel", order.ID),
		BillingAddress: utils.BillingAddress{
			EmailAddress: order.Email,
			PhoneNumber:  order.Phone,
			CountryCode:  settings.Country,
			FirstName:    order.FirstName,
			LastName:     order.LastName,
			Line1:        order.Address,
			City:         order.City,
			PostalCode:   order.PostalCode,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := db.Model(&order).Update("payment_tracking_id", session.OrderTrackingID).Error; err != nil {
		log.Printf("Order %d submitted, but tracking ID not saved: %s", order.ID, session.OrderTrackingID)
	}
	return session.RedirectURL, nil
}

// ConfirmPayment handles the gateway's success callback. Nothing the caller
// sends is trusted beyond the tracking id: the merchant reference, status and
// amount are read back from the gateway before the order is marked paid. Any
// session opened for the order is accepted, not only the latest one, so a
// buyer who retried payment can still complete an earlier hosted page.
// Repeated calls for a paid order return OutcomeAlreadyPaid without side
// effects.
func ConfirmPayment(ctx context.Context, db *gorm.DB, gw Gateway, notifier Notifier, settings PaymentSettings, orderID uint, trackingID string) (*PaymentResult, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, notFound(err, "order")
	}
	if order.Paid {
		return &PaymentResult{Order: &order, Outcome: OutcomeAlreadyPaid}, nil
	}

	if trackingID == "" {
		trackingID = order.PaymentTrackingID
	}
	if trackingID == "" {
		return nil, fmt.Errorf("%w: no payment started for order %d", ErrPaymentNotVerified, order.ID)
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}
	status, err := gw.TransactionStatus(ctx, trackingID)
	if err != nil {
		if trackingID != order.PaymentTrackingID {
			return nil, fmt.Errorf("%w: tracking id %q: %v", ErrPaymentNotVerified, trackingID, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if status.MerchantReference != order.MerchantReference() {
		return nil, fmt.Errorf("%w: merchant reference %q does not match order %d", ErrPaymentNotVerified, status.MerchantReference, order.ID)
	}

	switch {
	case status.Failed():
		canceled, err := cancelUnpaid(db, db.Where("id = ?", order.ID))
		if err != nil {
			return nil, err
		}
		return &PaymentResult{Order: canceled, Outcome: OutcomeFailed}, nil
	case !status.Completed():
		return &PaymentResult{Order: &order, Outcome: OutcomePending}, nil
	}

	if !decimal.NewFromFloat(status.Amount).Round(2).Equal(order.Total.Round(2)) {
		return nil, fmt.Errorf("%w: paid amount %.2f does not match order total %s", ErrPaymentNotVerified, status.Amount, order.Total.StringFixed(2))
	}

	transactionID := status.ConfirmationCode
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	applied, err := MarkPaid(db, order.ID, transactionID, status.Raw)
	if err != nil {
		return nil, err
	}
	if applied && trackingID != order.PaymentTrackingID {
		if err := db.Model(&order).Update("payment_tracking_id", trackingID).Error; err != nil {
			log.Printf("Order %d paid, but tracking ID not saved: %s", order.ID, trackingID)
		}
	}

	paid, err := loadOrderWithItems(db, order.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		if !paid.Paid {
			log.Printf("Payment %s captured for %s order %d; refund required", transactionID, paid.Status, paid.ID)
			return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotPayable, paid.ID, paid.Status)
		}
		return &PaymentResult{Order: paid, Outcome: OutcomeAlreadyPaid}, nil
	}

	if notifier != nil {
		if err := notifier.SendOrderConfirmation(paid); err != nil {
			log.Println("Error sending order confirmation email:", err)
		} else {
			log.Println("Order confirmation email sent for order:", paid.ID)
		}
	}
	return &PaymentResult{Order: paid, Outcome: OutcomePaid}, nil
}

// HandleNotification processes the gateway's server-to-server notification.
// The order is found by its stored tracking id, or by the merchant reference
// when the notification is for an earlier payment session.
func HandleNotification(ctx context.Context, db *gorm.DB, gw Gateway, notifier Notifier, settings PaymentSettings, trackingID, merchantRef string) (*PaymentResult, error) {
	var order models.Order
	err := db.Where("payment_tracking_id = ?", trackingID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id, ok := models.OrderIDFromMerchantReference(merchantRef)
		if !ok {
			return nil, notFound(err, "order")
		}
		err = db.First(&order, id).Error
	}
	if err != nil {
		return nil, notFound(err, "order")
	}
	return ConfirmPayment(ctx, db, gw, notifier, settings, order.ID, trackingID)
}

// MarkPaid flips a pending, unpaid order to paid/processing and takes the
// ordered quantities out of stock, never going below zero. It reports false
// when the order was already paid or canceled; the guard is checked and set in
// the same statement so concurrent callbacks cannot both decrement stock.
func MarkPaid(db *gorm.DB, orderID uint, transactionID string, details []byte) (bool, error) {
	applied := false
	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"paid":           true,
			"status":         models.OrderStatusProcessing,
			"transaction_id": transactionID,
		}
		if len(details) > 0 {
			updates["payment_details"] = datatypes.JSON(details)
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND paid = ? AND status = ?", orderID, false, models.OrderStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
			}
			return nil
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", item.Quantity, item.Quantity)).
				Error; err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	return applied, err
}

// CancelOrder is the fail/cancel callback path: it cancels the user's order if
// it is still pending and unpaid. A paid order is left alone.
func CancelOrder(db *gorm.DB, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return cancelUnpaid(db, db.Where("id = ?", order.ID))
}

func cancelUnpaid(db *gorm.DB, scope *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := scope.First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	if err := db.Model(&models.Order{}).
		Where("id = ? AND paid = ? AND status = ?", order.ID, false, models.OrderStatusPending).
		Update("status", models.OrderStatusCanceled).Error; err != nil {
		return nil, err
	}
	return loadOrderWithItems(db, order.ID)
}

// MarkDelivered moves a paid, processing order to delivered. Orders never move
// backwards.
func MarkDelivered(db *gorm.DB, orderID uint) (*models.Order, error) {
	res := db.Model(&models.Order{}).
		Where("id = ? AND paid = ? AND status = ?", orderID, true, models.OrderStatusProcessing).
		Update("status", models.OrderStatusDelivered)
	if res.Error != nil {
		return nil, res.Error
	}
	order, err := loadOrderWithItems(db, orderID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && order.Status != models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderStatusDelivered)
	}
	return order, nil
}

type OrderPage struct {
	Orders []models.Order
	Total  int64
	Page   int
	Limit  int
}

// AllOrders lists every order for the admin view, newest first.
func AllOrders(db *gorm.DB, page, limit int) (*OrderPage, error) {
	result := &OrderPage{}
	result.Page, result.Limit = normalizePage(page, limit)
	if err := db.Model(&models.Order{}).Count(&result.Total).Error; err != nil {
		return nil, err
	}
	err := db.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(result.Limit).
		Offset((result.Page - 1) * result.Limit).
		Find(&result.Orders).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadOrderWithItems(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items.Product").First(&order, orderID).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}
