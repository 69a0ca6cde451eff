package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"shopcart/internal/cart"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	EndpointPrefix string
	GinMode        string
	LogLevel       string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	CurrencySymbol string

	CatalogURL         string
	SuggestedURL       string
	ConsulAddr         string
	CatalogServiceName string
	ServiceName        string
	ServiceHost        string

	KafkaBrokers []string
	KafkaTopic   string
	RabbitMQURI  string
	RabbitQueue  string

	AuthSecret  string
	CORSOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:           os.Getenv("GRPC_ADDR"),
		EndpointPrefix:     getenv("SERVICE_ENDPOINT_PREFIX", "/v1"),
		GinMode:            os.Getenv("GIN_MODE"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		StoreDriver:        strings.ToLower(getenv("STORE_DRIVER", "sqlite")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getenv("SQLITE_PATH", "cart.db"),
		CurrencySymbol:     getenv("CURRENCY_SYMBOL", cart.DefaultCurrencySymbol),
		CatalogURL:         os.Getenv("CATALOG_URL"),
		SuggestedURL:       os.Getenv("SUGGESTED_URL"),
		ConsulAddr:         os.Getenv("CONSUL_ADDR"),
		CatalogServiceName: getenv("CATALOG_SERVICE_NAME", "products"),
		ServiceName:        getenv("SERVICE_NAME", "cart"),
		ServiceHost:        getenv("SERVICE_HOST", "localhost"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         os.Getenv("KAFKA_TOPIC"),
		RabbitMQURI:        os.Getenv("RABBITMQ_URI"),
		RabbitQueue:        os.Getenv("RABBITMQ_QUEUE"),
		AuthSecret:         os.Getenv("AUTH_SECRET"),
		CORSOrigins:        splitList(getenv("CORS_ORIGINS", "*")),
	}
	if _, ok := os.LookupEnv("GRPC_ADDR"); !ok {
		c.GRPCAddr = ":50051"
	}
	return c, c.validate()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if !strings.HasPrefix(c.EndpointPrefix, "/") {
		return fmt.Errorf("SERVICE_ENDPOINT_PREFIX must start with /")
	}
	return nil
}

// UseConsul reports whether catalog endpoints come from consul discovery.
func (c Config) UseConsul() bool {
	return c.ConsulAddr != "" && c.CatalogURL == "" && c.SuggestedURL == ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
