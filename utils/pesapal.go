package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrGateway = errors.New("payment gateway error")

type PesapalConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	NotificationID string
	Timeout        time.Duration
}

// PesapalClient talks to the Pesapal v3 REST API.
type PesapalClient struct {
	cfg    PesapalConfig
	client *resty.Client
}

func NewPesapalClient(cfg PesapalConfig) *PesapalClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &PesapalClient{cfg: cfg, client: client}
}

type pesapalError struct {
	ErrorType string `json:"error_type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (e *pesapalError) present() bool {
	return e != nil && (e.Code != "" || e.Message != "" || e.ErrorType != "")
}

type BillingAddress struct {
	EmailAddress string `json:"email_address"`
	PhoneNumber  string `json:"phone_number"`
	CountryCode  string `json:"country_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Line1        string `json:"line_1"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
}

type PaymentRequest struct {
	ID              string         `json:"id"`
	Currency        string         `json:"currency"`
	Amount          float64        `json:"amount"`
	Description     string         `json:"description"`
	CallbackURL     string         `json:"callback_url"`
	CancellationURL string         `json:"cancellation_url,omitempty"`
	NotificationID  string         `json:"notification_id"`
	BillingAddress  BillingAddress `json:"billing_address"`
}

type PaymentSession struct {
	OrderTrackingID   string        `json:"order_tracking_id"`
	MerchantReference string        `json:"merchant_reference"`
	RedirectURL       string        `json:"redirect_url"`
	Status            string        `json:"status"`
	Error             *pesapalError `json:"error"`
}

type TransactionStatus struct {
	PaymentMethod            string        `json:"payment_method"`
	Amount                   float64       `json:"amount"`
	ConfirmationCode         string        `json:"confirmation_code"`
	PaymentStatusDescription string        `json:"payment_status_description"`
	Description              string        `json:"description"`
	StatusCode               int           `json:"status_code"`
	MerchantReference        string        `json:"merchant_reference"`
	Currency                 string        `json:"currency"`
	Error                    *pesapalError `json:"error"`

	// Raw is the response body as received.
	Raw json.RawMessage `json:"-"`
}

func (s TransactionStatus) Completed() bool {
	return strings.EqualFold(s.PaymentStatusDescription, "Completed")
}

func (s TransactionStatus) Failed() bool {
	switch strings.ToLower(s.PaymentStatusDescription) {
	case "failed", "invalid", "reversed":
		return true
	}
	return false
}

func (p *PesapalClient) accessToken(ctx context.Context) (string, error) {
	if p.cfg.ConsumerKey == "" || p.cfg.ConsumerSecret == "" {
		return "", fmt.Errorf("%w: pesapal consumer credentials are not set", ErrGateway)
	}

	var response struct {
		Token  string        `json:"token"`
		Error  *pesapalError `json:"error"`
		Status string        `json:"status"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"consumer_key":    p.cfg.ConsumerKey,
			"consumer_secret": p.cfg.ConsumerSecret,
		}).
		SetResult(&response).
		Post("/api/Auth/RequestToken")
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrGateway, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("%w: token request failed with status %d: %s", ErrGateway, resp.StatusCode(), string(resp.Body()))
	}
	if response.Error.present() {
		return "", fmt.Errorf("%w: token request: %s", ErrGateway, response.Error.Message)
	}
	if response.Token == "" {
		return "", fmt.Errorf("%w: token not found in response", ErrGateway)
	}
	return response.Token, nil
}

// SubmitOrder registers the payment and returns the hosted payment page to send the buyer to.
func (p *PesapalClient) SubmitOrder(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	if req.NotificationID == "" {
		req.NotificationID = p.cfg.NotificationID
	}
	if req.NotificationID == "" {
		return nil, fmt.Errorf("%w: missing notification id", ErrGateway)
	}

	var session PaymentSession
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(req).
		SetResult(&session).
		Post("/api/Transactions/SubmitOrderRequest")
	if err != nil {
		return nil, fmt.Errorf("%w: submit order: %v", ErrGateway, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: submit order failed with status %d: %s", ErrGateway, resp.StatusCode(), string(resp.Body()))
	}
	if session.Error.present() {
		return nil, fmt.Errorf("%w: submit order: %s", ErrGateway, session.Error.Message)
	}
	if session.RedirectURL == "" || session.OrderTrackingID == "" {
		return nil, fmt.Errorf("%w: incomplete response from payment gateway", ErrGateway)
	}
	return &session, nil
}

// TransactionStatus asks the gateway what happened to a payment.
func (p *PesapalClient) TransactionStatus(ctx context.Context, trackingID string) (*TransactionStatus, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/api/Transactions/GetTransactionStatus?orderTrackingId=" + url.QueryEscape(trackingID))
	if err != nil {
		return nil, fmt.Errorf("%w: transaction status: %v", ErrGateway, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: transaction status failed with status %d", ErrGateway, resp.StatusCode())
	}

	var status TransactionStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, fmt.Errorf("%w: invalid transaction status response: %v", ErrGateway, err)
	}
	if status.Error.present() {
		return nil, fmt.Errorf("%w: transaction status: %s", ErrGateway, status.Error.Message)
	}
	status.Raw = json.RawMessage(resp.Body())
	return &status, nil
}
