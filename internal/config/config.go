package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const placeholderSigningSecret = "CHANGE_ME_PRODUCTION_SIGNING_SECRET"

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	DBPath            string        `env:"APP_DB_PATH" envDefault:"./data/portal.db"`
	DBMaxOpenConns    int           `env:"APP_DB_MAX_OPEN_CONNS" envDefault:"4"`
	DBMaxIdleConns    int           `env:"APP_DB_MAX_IDLE_CONNS" envDefault:"2"`
	DBConnMaxLifetime time.Duration `env:"APP_DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	TokenSigningSecret string        `env:"TOKEN_SIGNING_SECRET"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	TokenIssuer        string        `env:"TOKEN_ISSUER" envDefault:"buildingportal"`

	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"6"`
	PasswordMaxLength int `env:"PASSWORD_MAX_LENGTH" envDefault:"128"`

	ParkingCapacity int `env:"PARKING_CAPACITY" envDefault:"60"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	TrustProxy         bool     `env:"TRUST_PROXY" envDefault:"false"`

	CaptchaEnabled   bool   `env:"CAPTCHA_ENABLED" envDefault:"false"`
	CaptchaProvider  string `env:"CAPTCHA_PROVIDER" envDefault:"turnstile"`
	CaptchaVerifyURL string `env:"CAPTCHA_VERIFY_URL"`
	CaptchaSecret    string `env:"CAPTCHA_SECRET"`

	NotifySender string `env:"NOTIFY_SENDER" envDefault:"log"`
	NotifyFrom   string `env:"NOTIFY_FROM" envDefault:"office@example.com"`
	SMTPHost     string `env:"SMTP_HOST" envDefault:"127.0.0.1"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`

	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME" envDefault:"admin"`
	BootstrapAdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the environment and fails when the process cannot run safely,
// most notably when no token signing secret is configured.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CaptchaProvider = strings.ToLower(strings.TrimSpace(cfg.CaptchaProvider))
	cfg.NotifySender = strings.ToLower(strings.TrimSpace(cfg.NotifySender))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.CaptchaEnabled && strings.TrimSpace(cfg.CaptchaVerifyURL) == "" {
		switch cfg.CaptchaProvider {
		case "turnstile", "":
			cfg.CaptchaVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
		case "hcaptcha":
			cfg.CaptchaVerifyURL = "https://hcaptcha.com/siteverify"
		default:
			return Config{}, fmt.Errorf("unsupported CAPTCHA_PROVIDER: %s", cfg.CaptchaProvider)
		}
	}
	return cfg, nil
}

func (c Config) Validate() error {
	secret := strings.TrimSpace(c.TokenSigningSecret)
	if secret == "" || secret == placeholderSigningSecret || len(secret) < 32 {
		return fmt.Errorf("TOKEN_SIGNING_SECRET must be set to a strong non-default value (>=32 chars)")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 {
		return fmt.Errorf("invalid DB pool config")
	}
	if c.PasswordMinLength < 6 {
		return fmt.Errorf("password min length must be >= 6")
	}
	if c.PasswordMaxLength < c.PasswordMinLength {
		return fmt.Errorf("password max length must be >= min length")
	}
	if c.ParkingCapacity <= 0 {
		return fmt.Errorf("PARKING_CAPACITY must be positive")
	}
	switch c.NotifySender {
	case "", "log", "smtp":
	default:
		return fmt.Errorf("NOTIFY_SENDER must be one of: log, smtp")
	}
	if c.CaptchaEnabled && strings.TrimSpace(c.CaptchaSecret) == "" {
		return fmt.Errorf("CAPTCHA_SECRET is required when CAPTCHA_ENABLED=true")
	}
	return nil
}
