package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Remote modes.
const (
	RemoteNone     = "none"
	RemoteHTTP     = "http"
	RemotePostgres = "postgres"
)

// Notification channels.
const (
	ChannelConsole  = "console"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// Config stores runtime configuration loaded from the environment (and .env when present).
type Config struct {
	DBPath              string `envconfig:"DB_PATH" default:"mycircle.db"`
	AllowMemoryFallback bool   `envconfig:"ALLOW_MEMORY_FALLBACK" default:"false"`
	Port                string `envconfig:"PORT" default:"8080"`
	TimezoneName        string `envconfig:"LOCAL_TIMEZONE" default:"Local"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `envconfig:"TWILIO_FROM_NUMBER"`

	NotifyChannel string        `envconfig:"NOTIFY_CHANNEL" default:"console"`
	NotifyTo      string        `envconfig:"NOTIFY_TO"`
	NotifyMinLead time.Duration `envconfig:"NOTIFY_MIN_LEAD" default:"5s"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	RemoteMode        string        `envconfig:"REMOTE_MODE" default:"none"`
	RemoteURL         string        `envconfig:"REMOTE_URL"`
	RemoteDatabaseURL string        `envconfig:"REMOTE_DATABASE_URL"`
	RemoteTimeout     time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`
	SessionUserID     string        `envconfig:"SESSION_USER_ID"`
	SessionToken      string        `envconfig:"SESSION_TOKEN"`

	LocalTimezone *time.Location `ignored:"true"`
}

// Load reads configuration values and prepares defaults where applicable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	location, err := time.LoadLocation(c.TimezoneName)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.TimezoneName).Msg("config: invalid LOCAL_TIMEZONE, defaulting to system local")
		location = time.Local
	}
	c.LocalTimezone = location

	switch c.RemoteMode {
	case "", RemoteNone:
		c.RemoteMode = RemoteNone
	case RemoteHTTP:
		if c.RemoteURL == "" {
			return fmt.Errorf("config: REMOTE_MODE=http requires REMOTE_URL")
		}
	case RemotePostgres:
		if c.RemoteDatabaseURL == "" {
			return fmt.Errorf("config: REMOTE_MODE=postgres requires REMOTE_DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unsupported REMOTE_MODE %q", c.RemoteMode)
	}

	switch c.NotifyChannel {
	case ChannelConsole, ChannelSMS, ChannelWhatsApp:
	default:
		return fmt.Errorf("config: unsupported NOTIFY_CHANNEL %q", c.NotifyChannel)
	}

	if c.NotifyMinLead < 0 {
		c.NotifyMinLead = 0
	}
	return nil
}
