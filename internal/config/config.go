package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when required settings are missing or inconsistent.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Search   SearchConfig
	Throttle ThrottleConfig
	Registry RegistryConfig
	Database DatabaseConfig
	Notifier NotifierConfig
	Log      LogConfig
}

// SearchConfig defines the fare search endpoint and the fixed passenger context.
type SearchConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	APIKey            string        `mapstructure:"api_key"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	AnchorHour        int           `mapstructure:"anchor_hour"`
	DiscountCardCode  string        `mapstructure:"discount_card_code"`
	DiscountCardLabel string        `mapstructure:"discount_card_label"`
}

// ThrottleConfig defines the pauses taken around each search call.
type ThrottleConfig struct {
	MinJitter time.Duration `mapstructure:"min_jitter"`
	MaxJitter time.Duration `mapstructure:"max_jitter"`
	Pause     time.Duration `mapstructure:"pause"`
}

// RegistryConfig selects where tracked journeys are loaded from.
type RegistryConfig struct {
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	Migrate bool   `mapstructure:"migrate"`
}

// DatabaseConfig defines the database connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns URL when set, otherwise a connection string built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// NotifierConfig selects and configures the notification channel.
type NotifierConfig struct {
	Driver      string          `mapstructure:"driver"`
	SendSummary bool            `mapstructure:"send_summary"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
	WebSocket   WebSocketConfig `mapstructure:"websocket"`
}

// TelegramConfig defines the bot credentials used to reach the operator.
type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// WebSocketConfig defines the operator dashboard endpoint.
type WebSocketConfig struct {
	URL              string        `mapstructure:"url"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// LogConfig defines the logger level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; every key has a default.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("search.api_key", "SEARCH_API_KEY", "SNCF_API_KEY")
	_ = v.BindEnv("notifier.telegram.bot_token", "NOTIFIER_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("notifier.telegram.chat_id", "NOTIFIER_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("database.url", "DATABASE_URL")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.endpoint", "https://www.sncf-connect.com/bff/api/v1/itineraries")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:140.0) Gecko/20100101 Firefox/140.0")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.anchor_hour", 5)
	v.SetDefault("search.discount_card_code", "WEEKEND_PASS")
	v.SetDefault("search.discount_card_label", "Carte Avantage Adulte")

	v.SetDefault("throttle.min_jitter", time.Second)
	v.SetDefault("throttle.max_jitter", 3*time.Second)
	v.SetDefault("throttle.pause", 3*time.Second)

	v.SetDefault("registry.driver", "file")
	v.SetDefault("registry.path", "data/my_trips.json")
	v.SetDefault("registry.migrate", false)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "farewatch")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "farewatch")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("notifier.driver", "telegram")
	v.SetDefault("notifier.send_summary", false)
	v.SetDefault("notifier.telegram.bot_token", "")
	v.SetDefault("notifier.telegram.chat_id", "")
	v.SetDefault("notifier.telegram.base_url", "https://api.telegram.org")
	v.SetDefault("notifier.telegram.timeout", 10*time.Second)
	v.SetDefault("notifier.websocket.url", "")
	v.SetDefault("notifier.websocket.max_attempts", 3)
	v.SetDefault("notifier.websocket.handshake_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate reports missing credentials and inconsistent settings.
func (c Config) Validate() error {
	if c.Search.Endpoint == "" {
		return fmt.Errorf("%w: search.endpoint is required", ErrInvalidConfig)
	}
	if c.Search.AnchorHour < 0 || c.Search.AnchorHour > 23 {
		return fmt.Errorf("%w: search.anchor_hour must be within 0-23, got %d", ErrInvalidConfig, c.Search.AnchorHour)
	}
	if c.Throttle.MinJitter < 0 || c.Throttle.MaxJitter < c.Throttle.MinJitter || c.Throttle.Pause < 0 {
		return fmt.Errorf("%w: throttle delays must satisfy 0 <= min_jitter <= max_jitter and pause >= 0", ErrInvalidConfig)
	}

	switch c.Registry.Driver {
	case "file":
		if c.Registry.Path == "" {
			return fmt.Errorf("%w: registry.path is required for the file registry", ErrInvalidConfig)
		}
	case "postgres":
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.DBName == "") {
			return fmt.Errorf("%w: database.url or database.host and database.dbname are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown registry driver %q", ErrInvalidConfig, c.Registry.Driver)
	}

	switch c.Notifier.Driver {
	case "telegram":
		if c.Notifier.Telegram.BotToken == "" || c.Notifier.Telegram.ChatID == "" {
			return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set", ErrInvalidConfig)
		}
	case "websocket":
		if c.Notifier.WebSocket.URL == "" {
			return fmt.Errorf("%w: notifier.websocket.url is required", ErrInvalidConfig)
		}
	case "log":
	default:
		return fmt.Errorf("%w: unknown notifier driver %q", ErrInvalidConfig, c.Notifier.Driver)
	}
	return nil
}
