package services

import (
	"time"

	"github.com/Kariqs/amexan-shop/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartFor returns the user's cart with its items and products, creating the
// cart on first use. Concurrent first calls converge on the same row through
// the unique user_id index.
func CartFor(db *gorm.DB, userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error; err != nil {
		return nil, err
	}

	var out models.Cart
	if err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("cart_items.id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToCart adds quantity units of a product. An existing line is incremented
// in a single upsert, so two simultaneous adds end up as one line holding the
// summed quantity.
func AddToCart(db *gorm.DB, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, notFound(err, "product")
	}
	if !product.Available {
		return nil, ErrProductUnavailable
	}

	cart, err := CartFor(db, userID)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: quantity}
	err = db.Omit("Product").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	return findCartItem(db, cart.ID, product.ID)
}

// UpdateCartItem sets the quantity of an existing line; zero or less removes it
// and returns a nil item.
func UpdateCartItem(db *gorm.DB, userID, productID uint, quantity int) (*models.CartItem, error) {
	item, err := lookupCartItem(db, userID, productID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		return nil, db.Delete(item).Error
	}

	if err := db.Model(item).Update("quantity", quantity).Error; err != nil {
		return nil, err
	}
	return findCartItem(db, item.CartID, productID)
}

func RemoveFromCart(db *gorm.DB, userID, productID uint) (*models.CartItem, error) {
	item, err := lookupCartItem(db, userID, productID)
	if err != nil {
		return nil, err
	}
	return item, db.Delete(&models.CartItem{}, item.ID).Error
}

// lookupCartItem resolves cart, product and line in that order, reporting the
// first one missing.
func lookupCartItem(db *gorm.DB, userID, productID uint) (*models.CartItem, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, notFound(err, "cart")
	}
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return findCartItem(db, cart.ID, product.ID)
}

func findCartItem(db *gorm.DB, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := db.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, notFound(err, "cart item")
	}
	return &item, nil
}
