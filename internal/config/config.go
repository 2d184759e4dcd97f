package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`

	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"24"`

	LogMode string `envconfig:"LOG_MODE" default:"development"`

	// Bootstrap admin, created on first start if no admin exists.
	AdminName     string `envconfig:"ADMIN_NAME" default:"System Administrator Account"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@storeapp.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`
	AdminAddress  string `envconfig:"ADMIN_ADDRESS" default:"System Address"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
