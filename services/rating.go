package services

import (
	"time"

	"github.com/Kariqs/amexan-shop/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HasPurchased reports whether the user has a paid order containing the product.
func HasPurchased(db *gorm.DB, userID, productID uint) (bool, error) {
	var count int64
	err := db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.paid = ? AND order_items.product_id = ?", userID, true, productID).
		Count(&count).Error
	return count > 0, err
}

// RateProduct records the user's rating for a product they bought. Rating the
// same product again replaces the earlier score and comment.
func RateProduct(db *gorm.DB, userID uint, slug string, in models.RatingInput) (*models.Rating, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}

	var product models.Product
	if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}

	purchased, err := HasPurchased(db, userID, product.ID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, ErrNotPurchased
	}

	rating := models.Rating{
		ProductID: product.ID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"rating":     in.Rating,
			"comment":    in.Comment,
			"updated_at": time.Now(),
		}),
	}).Create(&rating).Error; err != nil {
		return nil, err
	}

	var saved models.Rating
	if err := db.Where("product_id = ? AND user_id = ?", product.ID, userID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
