package config

import (
	"testing"
	"time"

	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, []string{"log"}, cfg.NotifyTransport)
		assert.Equal(t, 4, cfg.Pool().Workers)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("PLATFORM_FEE", "49.995")
		t.Setenv("TAX_ENABLED", "true")
		t.Setenv("DEFAULT_COMMISSION_RATE", "0.15")
		t.Setenv("NOTIFY_TRANSPORT", "sqs,websocket")
		t.Setenv("GATEWAY_TIMEOUT", "3s")

		cfg, err := Load()
		require.NoError(t, err)
		bc, err := cfg.Booking()

		require.NoError(t, err)
		assert.True(t, bc.PlatformFee.Equal(money.MustAmount("50.00")))
		assert.True(t, bc.TaxEnabled)
		assert.True(t, bc.DefaultCommissionRate.Equal(money.MustRate("0.15").Decimal))
		assert.Equal(t, 3*time.Second, bc.GatewayTimeout)
		assert.Equal(t, []string{"sqs", "websocket"}, cfg.NotifyTransport)
	})

	t.Run("Invalid Fee Fails", func(t *testing.T) {
		t.Setenv("PLATFORM_FEE", "ten")

		cfg, err := Load()
		require.NoError(t, err)
		_, err = cfg.Booking()

		assert.ErrorContains(t, err, "PLATFORM_FEE")
	})
}

func TestTables(t *testing.T) {
	cfg := &Config{BookingsTable: "bookings"}

	_, err := cfg.Tables()

	assert.Error(t, err)
}
