package initializers

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var ErrMissingConfig = errors.New("missing required configuration")

// Config is decoded once at startup and handed to every component that needs it.
type Config struct {
	Port            string        `env:"PORT,default=8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	CookieSecure    bool          `env:"COOKIE_SECURE,default=false"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	FrontendURL     string        `env:"FRONTEND_URL,default=http://localhost:5173"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	MailTransport string `env:"MAIL_TRANSPORT,default=smtp"`
	MailFrom      string `env:"MAIL_FROM"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT,default=587"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPass      string `env:"SMTP_PASS"`
	MailAPIURL    string `env:"MAIL_API_URL"`
	MailAPIKey    string `env:"MAIL_API_KEY"`

	NotifyWorkers     int           `env:"NOTIFY_WORKERS,default=2"`
	NotifyQueueSize   int           `env:"NOTIFY_QUEUE_SIZE,default=256"`
	NotifyMaxAttempts int           `env:"NOTIFY_MAX_ATTEMPTS,default=5"`
	NotifyBackoff     time.Duration `env:"NOTIFY_BACKOFF,default=2s"`

	S3Bucket string `env:"AWS_S3_BUCKET"`

	AuthRateLimit int `env:"AUTH_RATE_LIMIT,default=5"`
	AuthRateBurst int `env:"AUTH_RATE_BURST,default=10"`
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// LoadEnv reads a .env file into the process environment when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("Error loading .env file")
	}
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: DATABASE_URL is empty", ErrMissingConfig)
	}
	if _, err := MySQLDSN(c.DatabaseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("%w: JWT_SECRET is empty", ErrMissingConfig)
	}
	switch c.MailTransport {
	case "smtp":
		if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" {
			return fmt.Errorf("%w: SMTP_HOST, SMTP_USER and SMTP_PASS are required for smtp mail", ErrMissingConfig)
		}
	case "http":
		if c.MailAPIURL == "" {
			return fmt.Errorf("%w: MAIL_API_URL is required for http mail", ErrMissingConfig)
		}
	case "log":
	default:
		return fmt.Errorf("%w: unknown MAIL_TRANSPORT %q", ErrMissingConfig, c.MailTransport)
	}
	if c.NotifyWorkers < 1 || c.NotifyMaxAttempts < 1 || c.NotifyQueueSize < 1 {
		return fmt.Errorf("%w: notification workers, queue size and attempts must be positive", ErrMissingConfig)
	}
	return nil
}

// Sender is the From address used on outgoing mail.
func (c Config) Sender() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return c.SMTPUser
}
