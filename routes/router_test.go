package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/routes"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// pesapalStub answers like the Pesapal v3 API. Every submitted order is
// reported back with statusDescription and the amount it was submitted with.
type pesapalStub struct {
	mu                sync.Mutex
	statusDescription string
	orders            map[string]utils.PaymentRequest
	statusQueries     int
}

func newPesapalStub(t *testing.T) (*pesapalStub, *httptest.Server) {
	stub := &pesapalStub{statusDescription: "Completed", orders: map[string]utils.PaymentRequest{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"token": "tok", "status": "200"})
	})
	mux.HandleFunc("/api/Transactions/SubmitOrderRequest", func(w http.ResponseWriter, r *http.Request) {
		var req utils.PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tracking := "trk-" + req.ID
		stub.mu.Lock()
		stub.orders[tracking] = req
		stub.mu.Unlock()
		writeJSON(w, map[string]any{
			"order_tracking_id":  tracking,
			"merchant_reference": req.ID,
			"redirect_url":       "https://pay.example.com/iframe?OrderTrackingId=" + tracking,
			"status":             "200",
		})
	})
	mux.HandleFunc("/api/Transactions/GetTransactionStatus", func(w http.ResponseWriter, r *http.Request) {
		tracking := r.URL.Query().Get("orderTrackingId")
		stub.mu.Lock()
		defer stub.mu.Unlock()
		stub.statusQueries++
		req, ok := stub.orders[tracking]
		if !ok {
			writeJSON(w, map[string]any{"error": map[string]string{"code": "invalid_tracking_id", "message": "unknown"}, "status": "500"})
			return
		}
		writeJSON(w, map[string]any{
			"payment_method":             "MpesaKE",
			"amount":                     req.Amount,
			"confirmation_code":          "CONF-" + tracking,
			"payment_status_description": stub.statusDescription,
			"status_code":                1,
			"merchant_reference":         req.ID,
			"currency":                   req.Currency,
			"status":                     "200",
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return stub, server
}

func (s *pesapalStub) setStatusDescription(desc string) {
	s.mu.Lock()
	s.statusDescription = desc
	s.mu.Unlock()
}

func (s *pesapalStub) queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusQueries
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []uint
}

func (n *recordingNotifier) SendOrderConfirmation(order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, order.ID)
	return nil
}

type memoryImages struct{}

func (memoryImages) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

type testApp struct {
	router   *gin.Engine
	db       *gorm.DB
	pesapal  *pesapalStub
	gateway  *httptest.Server
	notifier *recordingNotifier
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := initializers.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	stub, server := newPesapalStub(t)
	notifier := &recordingNotifier{}

	initializers.DB = db
	initializers.AppConfig = initializers.Config{
		JWTSecret:       testSecret,
		JWTTTL:          time.Hour,
		BaseURL:         "http://shop.test",
		FrontendURL:     "http://front.test",
		CORSOrigins:     []string{"http://front.test"},
		PaymentCurrency: "KES",
		PaymentCountry:  "KE",
		GatewayTimeout:  5 * time.Second,
	}
	initializers.Gateway = utils.NewPesapalClient(utils.PesapalConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		NotificationID: "ipn",
		Timeout:        5 * time.Second,
	})
	initializers.Notifier = notifier
	initializers.Images = memoryImages{}

	return &testApp{router: routes.SetupRouter(), db: db, pesapal: stub, gateway: server, notifier: notifier}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) userToken(t *testing.T, username, role string) (models.User, string) {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", FirstName: "Jane", LastName: "Doe", Role: role}
	require.NoError(t, a.db.Create(&user).Error)
	token, err := utils.GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

// seedProduct creates a category and product through the admin API.
func (a *testApp) seedProduct(t *testing.T, adminToken, slug, price string, stock int) models.Product {
	t.Helper()
	var category models.Category
	if err := a.db.Where("slug = ?", "books").First(&category).Error; err != nil {
		w := a.do("POST", "/admin/category", gin.H{"name": "Books", "slug": "books"}, adminToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, a.db.Where("slug = ?", "books").First(&category).Error)
	}

	w := a.do("POST", "/admin/product", gin.H{
		"name":       strings.ToUpper(slug[:1]) + slug[1:],
		"slug":       slug,
		"categoryId": category.ID,
		"price":      price,
		"stock":      stock,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product models.Product
	require.NoError(t, a.db.Where("slug = ?", slug).First(&product).Error)
	return product
}

func checkoutForm() gin.H {
	return gin.H{
		"firstName":  "Jane",
		"lastName":   "Doe",
		"email":      "jane@example.com",
		"phone":      "0712345678",
		"address":    "1 Market Street",
		"postalCode": "00100",
		"city":       "Nairobi",
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
