package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"HTTP_ADDR", "GRPC_ADDR", "SERVICE_ENDPOINT_PREFIX", "GIN_MODE", "LOG_LEVEL",
	"STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH", "CURRENCY_SYMBOL",
	"CATALOG_URL", "SUGGESTED_URL", "CONSUL_ADDR", "CATALOG_SERVICE_NAME", "SERVICE_NAME", "SERVICE_HOST",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "RABBITMQ_URI", "RABBITMQ_QUEUE",
	"AUTH_SECRET", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "/v1", c.EndpointPrefix)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "sqlite", c.StoreDriver)
	assert.Equal(t, "cart.db", c.SQLitePath)
	assert.Equal(t, "₺", c.CurrencySymbol)
	assert.Equal(t, "products", c.CatalogServiceName)
	assert.Equal(t, "cart", c.ServiceName)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Empty(t, c.KafkaBrokers)
	assert.False(t, c.UseConsul())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/cart")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CONSUL_ADDR", "consul:8500")
	t.Setenv("CURRENCY_SYMBOL", "$")
	t.Setenv("GIN_MODE", "release")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.True(t, c.UseConsul())
	assert.Equal(t, "$", c.CurrencySymbol)
	assert.Equal(t, "release", c.GinMode)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "mongo")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SERVICE_ENDPOINT_PREFIX", "v1")
	_, err = Load()
	assert.Error(t, err)
}
