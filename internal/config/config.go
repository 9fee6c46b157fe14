package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"profile-auth"`
	JWTSessionTTLMinutes int    `env:"JWT_SESSION_TTL_MINUTES" envDefault:"1440"`
	BcryptCost           int    `env:"BCRYPT_COST" envDefault:"10"`

	AllowUnconfirmedLogin bool `env:"AUTH_ALLOW_UNCONFIRMED_LOGIN" envDefault:"false"`
	LogOnMaxFailures      int  `env:"LOGON_MAX_FAILURES" envDefault:"10"`
	LogOnWindowMinutes    int  `env:"LOGON_WINDOW_MINUTES" envDefault:"15"`

	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPass        string `env:"SMTP_PASS"`
	SMTPFrom        string `env:"SMTP_FROM"`
	SMTPFromName    string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS      bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	ConfirmationURL string `env:"CONFIRMATION_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
