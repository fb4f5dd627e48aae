package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
)

type Config struct {
	HTTPPort   string `envconfig:"HTTP_PORT" default:"8080"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"parcelbot"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	KafkaBrokers             []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaConsumerGroup       string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"parcelbot"`
	KafkaPaymentEventsTopic  string   `envconfig:"KAFKA_PAYMENT_EVENTS_TOPIC" default:"payment-events"`
	KafkaPaymentChargesTopic string   `envconfig:"KAFKA_PAYMENT_CHARGES_TOPIC" default:"payment-charges"`

	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
	Timezone      string `envconfig:"TIMEZONE" default:"Asia/Singapore"`

	Currency   string           `envconfig:"CURRENCY" default:"SGD"`
	TierPrices map[string]int64 `envconfig:"TIER_PRICES" default:"standard:0,express:300,timeslot:500,14day-standard:700,14day-timeslot:1000"`
	TopUpPrice int64            `envconfig:"TOP_UP_PRICE" default:"200"`

	PaymentPendingTTL     time.Duration `envconfig:"PAYMENT_PENDING_TTL" default:"15m"`
	PaymentExpirySchedule string        `envconfig:"PAYMENT_EXPIRY_SCHEDULE" default:"*/30 * * * * *"`
	CheckoutURLTemplate   string        `envconfig:"CHECKOUT_URL_TEMPLATE" default:"https://pay.example.com/checkout/{reference}"`

	GatewayMaxAttempts int           `envconfig:"GATEWAY_MAX_ATTEMPTS" default:"3"`
	GatewayBaseDelay   time.Duration `envconfig:"GATEWAY_BASE_DELAY" default:"100ms"`
	GatewayMaxDelay    time.Duration `envconfig:"GATEWAY_MAX_DELAY" default:"2s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads configuration in order: .env file (if present),
// environment, flags. args are the command line arguments without the
// program name.
func LoadConfig(args []string) (Config, error) {
	flags := pflag.NewFlagSet("parcelbot", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to the .env file")
	port := flags.IntP("port", "p", 0, "port to listen on, overrides HTTP_PORT")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", *envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if flags.Changed("port") {
		cfg.HTTPPort = strconv.Itoa(*port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	var problems []error

	if p, err := strconv.Atoi(c.HTTPPort); err != nil || p <= 0 || p > 65535 {
		problems = append(problems, fmt.Errorf("invalid port: %q", c.HTTPPort))
	}
	if len(c.KafkaBrokers) == 0 {
		problems = append(problems, errors.New("KAFKA_BROKERS is empty"))
	}
	if c.PaymentPendingTTL <= 0 {
		problems = append(problems, fmt.Errorf("PAYMENT_PENDING_TTL must be positive, got %s", c.PaymentPendingTTL))
	}
	if c.GatewayMaxAttempts <= 0 {
		problems = append(problems, fmt.Errorf("GATEWAY_MAX_ATTEMPTS must be positive, got %d", c.GatewayMaxAttempts))
	}
	if !strings.Contains(c.CheckoutURLTemplate, "{reference}") {
		problems = append(problems, errors.New("CHECKOUT_URL_TEMPLATE must contain {reference}"))
	}

	return errors.Join(problems...)
}

// DSN is the Postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
