package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOODCART_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.True(t, cfg.App.IsDev())
	assert.True(t, cfg.Checkout.Tax.Equal(decimal.NewFromInt(15)))
	assert.True(t, cfg.Checkout.PlatformFee.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "max", cfg.Checkout.FeePolicy)
	assert.Equal(t, 3*time.Second, cfg.Checkout.RedirectDelay)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Square.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FOODCART_JWT_SECRET", "secret")
	t.Setenv("FOODCART_CHECKOUT_TAX", "12.5")
	t.Setenv("FOODCART_CHECKOUT_FEE_POLICY", "sum")
	t.Setenv("FOODCART_REDIS_ADDR", "localhost:6379")
	t.Setenv("FOODCART_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "12.5", cfg.Checkout.Tax.String())
	assert.Equal(t, "sum", cfg.Checkout.FeePolicy)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsNegativeTax(t *testing.T) {
	t.Setenv("FOODCART_JWT_SECRET", "secret")
	t.Setenv("FOODCART_CHECKOUT_TAX", "-1")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("FOODCART_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("FOODCART_JWT_SECRET"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMalformedCurrency(t *testing.T) {
	t.Setenv("FOODCART_JWT_SECRET", "secret")
	for _, v := range []string{"RUPEE", "I1R", " "} {
		t.Setenv("FOODCART_CHECKOUT_CURRENCY", v)
		_, err := Load()
		assert.Error(t, err, v)
	}

	t.Setenv("FOODCART_CHECKOUT_CURRENCY", "jpy")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "JPY", cfg.Checkout.Currency)
}
