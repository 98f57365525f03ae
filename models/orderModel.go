package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

type Order struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	UserID            uint            `json:"userId" gorm:"index;not null"`
	FirstName         string          `json:"firstName" gorm:"size:100"`
	LastName          string          `json:"lastName" gorm:"size:100"`
	Email             string          `json:"email" gorm:"size:254"`
	Phone             string          `json:"phone" gorm:"size:30"`
	Address           string          `json:"address" gorm:"size:250"`
	PostalCode        string          `json:"postalCode" gorm:"size:20"`
	City              string          `json:"city" gorm:"size:100"`
	Paid              bool            `json:"paid" gorm:"not null;index"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	TransactionID     string          `json:"transactionId" gorm:"size:100"`
	PaymentTrackingID string          `json:"paymentTrackingId" gorm:"size:100;index"`
	PaymentDetails    datatypes.JSON  `json:"paymentDetails,omitempty"`
	Total             decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// MerchantReference is the id the payment gateway knows this order by.
func (o Order) MerchantReference() string {
	return fmt.Sprintf("%s%d", merchantRefPrefix, o.ID)
}

const merchantRefPrefix = "ORDER-"

// OrderIDFromMerchantReference is the inverse of Order.MerchantReference.
func OrderIDFromMerchantReference(ref string) (uint, bool) {
	raw, ok := strings.CutPrefix(ref, merchantRefPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// OrderItem prices are captured at checkout and never follow later product edits.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"orderId" gorm:"index;not null"`
	ProductID uint            `json:"productId" gorm:"index;not null"`
	Product   *Product        `json:"product,omitempty"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (i OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CheckoutData struct {
	FirstName  string `json:"firstName" form:"firstName" binding:"required,max=100"`
	LastName   string `json:"lastName" form:"lastName" binding:"required,max=100"`
	Email      string `json:"email" form:"email" binding:"required,email"`
	Phone      string `json:"phone" form:"phone" binding:"required,max=30"`
	Address    string `json:"address" form:"address" binding:"required,max=250"`
	PostalCode string `json:"postalCode" form:"postalCode" binding:"required,max=20"`
	City       string `json:"city" form:"city" binding:"required,max=100"`
}

type OrderStatusData struct {
	Status OrderStatus `json:"status" binding:"required"`
}
