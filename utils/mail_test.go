package utils

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/Kariqs/amexan-shop/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func testMailer(captured *capturedMail, sendErr error) *Mailer {
	m := NewMailer(MailConfig{
		FromEmail:     "shop@example.com",
		FromEmailSMTP: "smtp.example.com",
		SMTPAddress:   "smtp.example.com:587",
		FrontendURL:   "https://shop.example.com",
	})
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*captured = capturedMail{addr: addr, from: from, to: to, msg: string(msg)}
		return sendErr
	}
	return m
}

func paidOrder() *models.Order {
	return &models.Order{
		ID:            12,
		FirstName:     "Jane",
		Email:         "jane@example.com",
		Address:       "1 Market Street",
		PostalCode:    "00100",
		City:          "Nairobi",
		Paid:          true,
		TransactionID: "QK123",
		Total:         decimal.RequireFromString("30.00"),
		Items: []models.OrderItem{{
			ProductID: 3,
			Product:   &models.Product{Name: "Novel"},
			Price:     decimal.RequireFromString("10.00"),
			Quantity:  3,
		}},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	var mail capturedMail
	require.NoError(t, testMailer(&mail, nil).SendOrderConfirmation(paidOrder()))

	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, "shop@example.com", mail.from)
	assert.Equal(t, []string{"jane@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Order #12 confirmed")
	assert.Contains(t, mail.msg, "Thank you for your order, Jane!")
	assert.Contains(t, mail.msg, "Novel")
	assert.Contains(t, mail.msg, "Total: 30.00")
	assert.Contains(t, mail.msg, "https://shop.example.com/profile?tab=orders")
	assert.True(t, strings.Contains(mail.msg, "<td style=\"text-align: right;\">30.00</td>"))
}

func TestSendOrderConfirmationErrors(t *testing.T) {
	var mail capturedMail
	order := paidOrder()
	order.Email = ""
	assert.Error(t, testMailer(&mail, nil).SendOrderConfirmation(order))

	err := testMailer(&mail, errors.New("connection refused")).SendOrderConfirmation(paidOrder())
	assert.ErrorContains(t, err, "failed to send email")
}
