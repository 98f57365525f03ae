package models

import "time"

type Rating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"productId" gorm:"not null;uniqueIndex:idx_ratings_product_user"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_ratings_product_user"`
	Rating    int       `json:"rating" gorm:"not null;check:chk_ratings_rating,rating BETWEEN 1 AND 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RatingInput struct {
	Rating  int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment" binding:"max=2000"`
}
