package models

import "gorm.io/gorm"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Username  string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email     string `json:"email" gorm:"size:254;index"`
	FirstName string `json:"firstName" gorm:"size:150"`
	LastName  string `json:"lastName" gorm:"size:150"`
	Password  string `json:"-"`
	Role      string `json:"role" gorm:"size:20;not null"`
}

type SignupData struct {
	Username  string `json:"username" form:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	FirstName string `json:"firstName" form:"firstName" binding:"max=150"`
	LastName  string `json:"lastName" form:"lastName" binding:"max=150"`
	Password  string `json:"password" form:"password" binding:"required,min=8"`
}

type LoginData struct {
	Identifier string `json:"identifier" form:"identifier" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
}
