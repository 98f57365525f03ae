package initializers

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDriver    string
	DBURL       string
	JWTSecret   string
	JWTTTL      time.Duration
	BaseURL     string
	FrontendURL string
	CORSOrigins []string

	PesapalBaseURL        string
	PesapalConsumerKey    string
	PesapalConsumerSecret string
	PesapalNotificationID string
	PaymentCurrency       string
	PaymentCountry        string
	GatewayTimeout        time.Duration

	FromEmail         string
	FromEmailPassword string
	FromEmailSMTP     string
	SMTPAddress       string

	S3Bucket string
}

var AppConfig Config

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	AppConfig = ConfigFromEnv()
	if err := AppConfig.ensureJWTSecret(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Config loaded: port=%s db=%s base_url=%s frontend=%s gateway=%s",
		AppConfig.Port, AppConfig.DBDriver, AppConfig.BaseURL, AppConfig.FrontendURL, AppConfig.PesapalBaseURL)
}

// ConfigFromEnv reads the process environment, falling back to development
// defaults for anything unset.
func ConfigFromEnv() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		DBURL:       os.Getenv("DB_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      getDuration("JWT_TTL", 72*time.Hour),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:4200"), "/"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:4200")),

		PesapalBaseURL:        getEnv("PESAPAL_BASE_URL", "https://cybqa.pesapal.com/pesapalv3"),
		PesapalConsumerKey:    os.Getenv("PESAPAL_CONSUMER_KEY"),
		PesapalConsumerSecret: os.Getenv("PESAPAL_CONSUMER_SECRET"),
		PesapalNotificationID: os.Getenv("PESAPAL_NOTIFICATION_ID"),
		PaymentCurrency:       getEnv("PAYMENT_CURRENCY", "KES"),
		PaymentCountry:        getEnv("PAYMENT_COUNTRY", "KE"),
		GatewayTimeout:        getDuration("GATEWAY_TIMEOUT", 30*time.Second),

		FromEmail:         os.Getenv("FROM_EMAIL"),
		FromEmailPassword: os.Getenv("FROM_EMAIL_PASSWORD"),
		FromEmailSMTP:     getEnv("FROM_EMAIL_SMTP", "smtp.gmail.com"),
		SMTPAddress:       getEnv("SMTP_ADDRESS", "smtp.gmail.com:587"),

		S3Bucket: getEnv("S3_BUCKET", "amexan"),
	}
}

// ensureJWTSecret refuses to run a real database without JWT_SECRET. A local
// sqlite run gets a random secret that lives as long as the process.
func (c *Config) ensureJWTSecret() error {
	if c.JWTSecret != "" {
		return nil
	}
	if c.DBDriver != "sqlite" {
		return errors.New("JWT_SECRET must be set")
	}
	c.JWTSecret = uuid.NewString() + uuid.NewString()
	log.Println("JWT_SECRET not set, using a random secret; sessions end when the process exits")
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
