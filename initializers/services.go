package initializers

import (
	"context"
	"log"

	"github.com/Kariqs/amexan-shop/services"
	"github.com/Kariqs/amexan-shop/utils"
)

var (
	Gateway  services.Gateway
	Notifier services.Notifier
	Images   services.ImageStore
)

func InitServices() {
	Gateway = utils.NewPesapalClient(utils.PesapalConfig{
		BaseURL:        AppConfig.PesapalBaseURL,
		ConsumerKey:    AppConfig.PesapalConsumerKey,
		ConsumerSecret: AppConfig.PesapalConsumerSecret,
		NotificationID: AppConfig.PesapalNotificationID,
		Timeout:        AppConfig.GatewayTimeout,
	})

	Notifier = utils.NewMailer(utils.MailConfig{
		FromEmail:         AppConfig.FromEmail,
		FromEmailPassword: AppConfig.FromEmailPassword,
		FromEmailSMTP:     AppConfig.FromEmailSMTP,
		SMTPAddress:       AppConfig.SMTPAddress,
		FrontendURL:       AppConfig.FrontendURL,
	})

	store, err := utils.NewS3ImageStore(context.Background(), AppConfig.S3Bucket)
	if err != nil {
		log.Println("Image uploads disabled:", err)
		return
	}
	Images = store
}

// PaymentSettings is the slice of configuration the payment flow needs.
func PaymentSettings() services.PaymentSettings {
	return services.PaymentSettings{
		BaseURL:  AppConfig.BaseURL,
		Currency: AppConfig.PaymentCurrency,
		Country:  AppConfig.PaymentCountry,
		Timeout:  AppConfig.GatewayTimeout,
	}
}
