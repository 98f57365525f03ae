package utils

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/Kariqs/amexan-shop/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type MailConfig struct {
	FromEmail         string
	FromEmailPassword string
	FromEmailSMTP     string
	SMTPAddress       string
	FrontendURL       string
}

type OrderEmailData struct {
	Name     string
	Order    *models.Order
	OrderURL string
}

type Mailer struct {
	cfg      MailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg, sendMail: smtp.SendMail}
}

func (m *Mailer) SendEmail(emailTo string, emailSubject string, data any, templateName string) error {
	tmpl, err := template.ParseFS(templateFS, "templates/"+templateName)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	err = tmpl.Execute(&body, data)
	if err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.FromEmail,
		emailTo,
		emailSubject,
		body.String(),
	)

	auth := smtp.PlainAuth("", m.cfg.FromEmail, m.cfg.FromEmailPassword, m.cfg.FromEmailSMTP)

	err = m.sendMail(m.cfg.SMTPAddress, auth, m.cfg.FromEmail, []string{emailTo}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendOrderConfirmation mails the buyer a summary of a paid order. The order's
// items must be loaded with their products.
func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	if order.Email == "" {
		return fmt.Errorf("order %d has no email address", order.ID)
	}
	data := OrderEmailData{
		Name:     order.FirstName,
		Order:    order,
		OrderURL: fmt.Sprintf("%s/profile?tab=orders", m.cfg.FrontendURL),
	}
	return m.SendEmail(order.Email, fmt.Sprintf("Order #%d confirmed", order.ID), data, "order_confirmation.html")
}
