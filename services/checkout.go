package services

import (
	"github.com/Kariqs/amexan-shop/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Checkout turns the user's cart into a pending order. Every cart line becomes
// an order item priced at the product's current price, and the cart is emptied
// in the same transaction.
func Checkout(db *gorm.DB, userID uint, data models.CheckoutData) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&cart).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrEmptyCart
			}
			return err
		}

		var items []models.CartItem
		if err := tx.Preload("Product").
			Where("cart_id = ?", cart.ID).
			Order("id").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Price:     item.Product.Price,
				Quantity:  item.Quantity,
			})
			total = total.Add(item.Cost())
		}

		order = models.Order{
			UserID:     userID,
			FirstName:  data.FirstName,
			LastName:   data.LastName,
			Email:      data.Email,
			Phone:      data.Phone,
			Address:    data.Address,
			PostalCode: data.PostalCode,
			City:       data.City,
			Paid:       false,
			Status:     models.OrderStatusPending,
			Total:      total,
			Items:      orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder loads one of the user's orders with its items.
func GetOrder(db *gorm.DB, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

// UserOrders is the order history shown on the profile page, newest first.
func UserOrders(db *gorm.DB, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_items.id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}
