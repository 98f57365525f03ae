package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Slug        string          `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	CategoryID  uint            `json:"categoryId" gorm:"index;not null"`
	Category    *Category       `json:"category,omitempty"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;check:chk_products_price,price >= 0"`
	Stock       int             `json:"stock" gorm:"not null;check:chk_products_stock,stock >= 0"`
	Available   bool            `json:"available" gorm:"not null;index"`
	Image       string          `json:"image"`
	Ratings     []Rating        `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductView is a product as shown in listings, with its computed rating.
// AverageRating is nil when nobody rated the product yet.
type ProductView struct {
	Product
	AverageRating *float64 `json:"averageRating"`
}

type ProductInput struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Slug        string           `json:"slug" binding:"required,max=200,slug"`
	CategoryID  uint             `json:"categoryId" binding:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Available   *bool            `json:"available"`
}

// ProductUpdate carries a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Available   *bool            `json:"available"`
}
