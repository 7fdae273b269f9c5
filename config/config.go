package config

import (
	"os"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	JWTSecret      string
	RazorpayKeyID  string
	RazorpaySecret string
	TicketSecret   string
}

// Load reads configuration from environment variables, falling back to
// local development defaults where a value is optional.
func Load() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		MongoURI:       envOr("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:        envOr("MONGODB_DB", "eventdb"),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		JWTSecret:      envOr("JWT_SECRET", "your_secret_key"),
		RazorpayKeyID:  os.Getenv("RAZORPAY_TEST_KEY_ID"),
		RazorpaySecret: os.Getenv("RAZORPAY_TEST_SECRET_KEY"),
		TicketSecret:   envOr("TICKET_SECRET", "your-very-secret-key"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
