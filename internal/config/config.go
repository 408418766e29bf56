package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort     string `env:"APP_PORT" envDefault:"8080"`
	AppBaseURL  string `env:"APP_BASE_URL"`
	DBDSN       string `env:"DB_DSN,required,notEmpty"`
	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://127.0.0.1:3000, http://localhost:3000"`
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"./uploads"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	NotifyQueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
	// WSTicketTTL bounds the token handed out for opening the notification socket.
	WSTicketTTL time.Duration `env:"WS_TICKET_TTL" envDefault:"2m"`

	Gateway GatewayConfig `envPrefix:"GATEWAY_"`
}

// GatewayConfig configures the hosted checkout used for card payments.
// An empty APIKey disables card checkout.
type GatewayConfig struct {
	Env          string `env:"ENV" envDefault:"sandbox"`
	APIKey       string `env:"API_KEY"`
	PrivateKey   string `env:"PRIVATE_KEY"`
	MerchantCode string `env:"MERCHANT_CODE"`
	ReturnURL    string `env:"RETURN_URL" envDefault:"http://localhost:3000/payments"`
}

func (g GatewayConfig) Enabled() bool { return g.APIKey != "" }

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
