package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

// ConfigFileEnv names an optional YAML file loaded before the environment.
const ConfigFileEnv = "GATEWAY_CONFIG_FILE"

type Config struct {
	Primary    Primary          `koanf:"primary"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Processor  ProcessorConfig  `koanf:"processor"`
	ThreeDS    ThreeDSConfig    `koanf:"threeds"`
	Poller     PollerConfig     `koanf:"poller"`
	Reconciler ReconcilerConfig `koanf:"reconciler"`
	Logger     LoggerConfig     `koanf:"logger"`
}

// Storage selects postgres or the in-process memory store.
type Primary struct {
	Env     string `koanf:"env" validate:"required"`
	Storage string `koanf:"storage" validate:"required,oneof=postgres memory"`
}

// RequestTimeout bounds ordinary handlers; long-poll routes use Poller.MaxDuration.
type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig is optional; an empty Addr keeps challenge claims in process memory.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	GuardTTL time.Duration `koanf:"guard_ttl" validate:"required"`
}

type ProcessorConfig struct {
	ProjectID     int64         `koanf:"project_id" validate:"required,gt=0"`
	SecretKey     string        `koanf:"secret_key" validate:"required"`
	BaseURL       string        `koanf:"base_url" validate:"required,url"`
	PublicBaseURL string        `koanf:"public_base_url" validate:"required"`
	CallbackPath  string        `koanf:"callback_path" validate:"required,startswith=/"`
	ReturnPath    string        `koanf:"return_path" validate:"required,startswith=/"`
	Timeout       time.Duration `koanf:"timeout" validate:"required"`
	VerifyReplies bool          `koanf:"verify_replies"`
}

type ThreeDSConfig struct {
	SettleDelay time.Duration `koanf:"settle_delay" validate:"required"`
}

type PollerConfig struct {
	Interval    time.Duration `koanf:"interval" validate:"required"`
	MaxDuration time.Duration `koanf:"max_duration" validate:"required,gtfield=Interval"`
}

type ReconcilerConfig struct {
	Schedule   string        `koanf:"schedule" validate:"required"`
	StaleAfter time.Duration `koanf:"stale_after" validate:"required"`
	BatchSize  int           `koanf:"batch_size" validate:"required,gt=0"`
	Retention  time.Duration `koanf:"retention" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json text"`
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                 "development",
		"primary.storage":             "postgres",
		"server.port":                 "8080",
		"server.read_timeout":         15 * time.Second,
		"server.write_timeout":        6 * time.Minute,
		"server.idle_timeout":         60 * time.Second,
		"server.request_timeout":      30 * time.Second,
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  time.Hour,
		"database.conn_max_idle_time": 30 * time.Minute,
		"redis.guard_ttl":             24 * time.Hour,
		"processor.callback_path":     "/v1/callbacks/processor",
		"processor.return_path":       "/purchase/result",
		"processor.timeout":           30 * time.Second,
		"threeds.settle_delay":        3 * time.Second,
		"poller.interval":             2 * time.Second,
		"poller.max_duration":         5 * time.Minute,
		"reconciler.schedule":         "@every 1m",
		"reconciler.stale_after":      2 * time.Minute,
		"reconciler.batch_size":       50,
		"reconciler.retention":        time.Hour,
		"logger.level":                "info",
		"logger.format":               "json",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			logger.Error("failed to load config file", "path", path, "error", err)
			return nil, err
		}
	}

	err := k.Load(env.Provider("GATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "GATEWAY_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	err = Validate(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Validate checks a fully populated config.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	var err error
	if cfg.Primary.Storage == "memory" {
		err = validate.StructExcept(cfg, "Database")
	} else {
		err = validate.Struct(cfg)
	}
	if err != nil {
		return err
	}
	if _, err := cfg.Processor.PublicURL(); err != nil {
		return err
	}
	return nil
}

// PublicURL parses PublicBaseURL with the scheme forced to https.
func (c ProcessorConfig) PublicURL() (*url.URL, error) {
	raw := strings.TrimSpace(c.PublicBaseURL)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid public base url %q: %w", c.PublicBaseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid public base url %q: missing host", c.PublicBaseURL)
	}
	u.Scheme = "https"
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// CallbackURL is the notification URL sent with every initiation request.
func (c ProcessorConfig) CallbackURL() (string, error) {
	u, err := c.PublicURL()
	if err != nil {
		return "", err
	}
	return u.JoinPath(c.CallbackPath).String(), nil
}
