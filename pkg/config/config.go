// Package config loads process configuration from the environment, reading a .env
// file first when one is present.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/academy-booking-core/pkg/booking"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/storage/dynamodb"
	"github.com/chris/academy-booking-core/pkg/tasks"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	// Store is "dynamodb" or "memory".
	Store string `envconfig:"STORE_BACKEND" default:"dynamodb"`

	BookingsTable     string `envconfig:"DYNAMODB_BOOKINGS_TABLE_NAME"`
	ReservationsTable string `envconfig:"DYNAMODB_RESERVATIONS_TABLE_NAME"`
	TransactionsTable string `envconfig:"DYNAMODB_TRANSACTIONS_TABLE_NAME"`
	PayoutsTable      string `envconfig:"DYNAMODB_PAYOUTS_TABLE_NAME"`
	CatalogTable      string `envconfig:"DYNAMODB_CATALOG_TABLE_NAME"`
	ConnectionsTable  string `envconfig:"DYNAMODB_CONNECTIONS_TABLE_NAME"`

	// TasksQueueURL switches side effects from the in-process pool to SQS.
	TasksQueueURL string `envconfig:"SQS_TASKS_QUEUE_URL"`
	// NotifyTransport is a comma-separated list of log, sqs, amqp and websocket.
	NotifyTransport      []string `envconfig:"NOTIFY_TRANSPORT" default:"log"`
	NotificationQueueURL string   `envconfig:"SQS_NOTIFICATIONS_QUEUE_URL"`
	AMQPURL              string   `envconfig:"AMQP_URL"`
	AMQPExchange         string   `envconfig:"AMQP_EXCHANGE" default:"notifications"`
	WebSocketEndpoint    string   `envconfig:"WEBSOCKET_API_ENDPOINT"`

	GatewayBaseURL   string        `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	GatewayKeyID     string        `envconfig:"RAZORPAY_KEY_ID"`
	GatewayKeySecret string        `envconfig:"RAZORPAY_KEY_SECRET"`
	GatewayTimeout   time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	GatewayMinimum   int64         `envconfig:"GATEWAY_MINIMUM_UNITS" default:"100"`
	// FakeGateway signs and captures payments locally. Development only.
	FakeGateway bool `envconfig:"FAKE_GATEWAY" default:"false"`

	PlatformFee    string `envconfig:"PLATFORM_FEE" default:"0"`
	TaxRate        string `envconfig:"TAX_RATE" default:"18"`
	TaxEnabled     bool   `envconfig:"TAX_ENABLED" default:"false"`
	CommissionRate string `envconfig:"DEFAULT_COMMISSION_RATE" default:"0.10"`
	Currency       string `envconfig:"CURRENCY" default:"INR"`

	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"30s"`

	Workers     int           `envconfig:"TASK_WORKERS" default:"4"`
	QueueSize   int           `envconfig:"TASK_QUEUE_SIZE" default:"256"`
	MaxAttempts int           `envconfig:"TASK_MAX_ATTEMPTS" default:"5"`
	BaseBackoff time.Duration `envconfig:"TASK_BASE_BACKOFF" default:"200ms"`

	// StaleOrderAge is how long an INITIATED order may stay open before reconciliation reports it.
	StaleOrderAge time.Duration `envconfig:"STALE_ORDER_AGE" default:"30m"`
	// PayoutGrace delays payout resubmission so in-flight tasks can finish first.
	PayoutGrace time.Duration `envconfig:"PAYOUT_GRACE" default:"10m"`
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

// Tables returns the DynamoDB table names, failing if any is missing.
func (c *Config) Tables() (dynamodb.Tables, error) {
	t := dynamodb.Tables{
		Bookings:     c.BookingsTable,
		Reservations: c.ReservationsTable,
		Transactions: c.TransactionsTable,
		Payouts:      c.PayoutsTable,
		Catalog:      c.CatalogTable,
		Connections:  c.ConnectionsTable,
	}
	if t.Bookings == "" || t.Reservations == "" || t.Transactions == "" || t.Payouts == "" || t.Catalog == "" || t.Connections == "" {
		return t, fmt.Errorf("one or more DynamoDB table name environment variables are not set")
	}
	return t, nil
}

// Booking parses the money settings of the booking service.
func (c *Config) Booking() (booking.Config, error) {
	fee, err := money.ParseAmount(c.PlatformFee)
	if err != nil {
		return booking.Config{}, fmt.Errorf("PLATFORM_FEE: %w", err)
	}
	tax, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return booking.Config{}, fmt.Errorf("TAX_RATE: %w", err)
	}
	rate, err := money.ParseRate(c.CommissionRate)
	if err != nil {
		return booking.Config{}, fmt.Errorf("DEFAULT_COMMISSION_RATE: %w", err)
	}
	return booking.Config{
		PlatformFee:           fee,
		TaxRate:               tax,
		TaxEnabled:            c.TaxEnabled,
		DefaultCommissionRate: rate,
		Currency:              c.Currency,
		GatewayTimeout:        c.GatewayTimeout,
		GatewayMinimum:        c.GatewayMinimum,
	}, nil
}

func (c *Config) Pool() tasks.PoolConfig {
	return tasks.PoolConfig{
		Workers:     c.Workers,
		QueueSize:   c.QueueSize,
		MaxAttempts: c.MaxAttempts,
		BaseBackoff: c.BaseBackoff,
	}
}
