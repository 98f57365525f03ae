package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func getTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := initializers.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  "x",
		Role:      models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createProduct(t *testing.T, db *gorm.DB, category models.Category, name, slug, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:       name,
		Slug:       slug,
		CategoryID: category.ID,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Available:  true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func checkoutData() models.CheckoutData {
	return models.CheckoutData{
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@example.com",
		Phone:      "0712345678",
		Address:    "1 Market Street",
		PostalCode: "00100",
		City:       "Nairobi",
	}
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p
}

// fakeGateway records submitted orders and answers status queries from a
// per-tracking-id table.
type fakeGateway struct {
	mu        sync.Mutex
	submitErr error
	submitted []utils.PaymentRequest
	sessions  map[string]int
	statuses  map[string]*utils.TransactionStatus
	queries   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]*utils.TransactionStatus{}, sessions: map[string]int{}}
}

func (g *fakeGateway) SubmitOrder(ctx context.Context, req utils.PaymentRequest) (*utils.PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	g.submitted = append(g.submitted, req)
	g.sessions[req.ID]++
	tracking := fmt.Sprintf("track-%s", req.ID)
	if n := g.sessions[req.ID]; n > 1 {
		tracking = fmt.Sprintf("%s-%d", tracking, n)
	}
	return &utils.PaymentSession{
		OrderTrackingID:   tracking,
		MerchantReference: req.ID,
		RedirectURL:       "https://pay.example.com/iframe?OrderTrackingId=" + tracking,
		Status:            "200",
	}, nil
}

func (g *fakeGateway) TransactionStatus(ctx context.Context, trackingID string) (*utils.TransactionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries++
	status, ok := g.statuses[trackingID]
	if !ok {
		return nil, errors.New("unknown tracking id")
	}
	return status, nil
}

func (g *fakeGateway) complete(order *models.Order, trackingID string) {
	g.setStatus(trackingID, &utils.TransactionStatus{
		Amount:                   order.Total.InexactFloat64(),
		ConfirmationCode:         "CONF-" + trackingID,
		PaymentStatusDescription: "Completed",
		StatusCode:               1,
		MerchantReference:        order.MerchantReference(),
		Currency:                 "KES",
	})
}

func (g *fakeGateway) setStatus(trackingID string, status *utils.TransactionStatus) {
	raw, _ := json.Marshal(status)
	status.Raw = raw
	g.mu.Lock()
	g.statuses[trackingID] = status
	g.mu.Unlock()
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []uint
	err  error
}

func (n *fakeNotifier) SendOrderConfirmation(order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, order.ID)
	return n.err
}
