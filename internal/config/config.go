package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL  string `yaml:"api_base_url" validate:"required,url"`
	SocketURL   string `yaml:"socket_url" validate:"required,url"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
	MetricsAddr string `yaml:"metrics_addr"`

	Store  StoreConfig  `yaml:"store"`
	Chat   ChatConfig   `yaml:"chat"`
	Socket SocketConfig `yaml:"socket"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=badger memory postgres"`
	Path        string `yaml:"path" validate:"required_if=Driver badger"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=Driver postgres"`
	// Profile scopes rows in a shared postgres store.
	Profile string `yaml:"profile" validate:"required"`
	// Key is a base64 encoded 32 byte key. When set the stored credential is
	// encrypted at rest.
	Key string `yaml:"key" validate:"omitempty,base64"`
}

type ChatConfig struct {
	PageSize         int           `yaml:"page_size" validate:"min=1,max=100"`
	TypingIdle       time.Duration `yaml:"typing_idle" validate:"gt=0"`
	ReadReceiptDelay time.Duration `yaml:"read_receipt_delay" validate:"gte=0"`
	RequestTimeout   time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ImageMaxBytes    int64         `yaml:"image_max_bytes" validate:"gt=0"`
}

type SocketConfig struct {
	ReconnectInterval    time.Duration `yaml:"reconnect_interval" validate:"gt=0"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts" validate:"gte=0"`
	SendBuffer           int           `yaml:"send_buffer" validate:"min=1"`
}

func Default() *Config {
	return &Config{
		APIBaseURL: "http://localhost:3000/api",
		SocketURL:  "ws://localhost:3000/ws",
		LogLevel:   "info",
		Store: StoreConfig{
			Driver:  "badger",
			Path:    defaultStorePath(),
			Profile: "default",
		},
		Chat: ChatConfig{
			PageSize:         20,
			TypingIdle:       800 * time.Millisecond,
			ReadReceiptDelay: 500 * time.Millisecond,
			RequestTimeout:   15 * time.Second,
			ImageMaxBytes:    10 << 20,
		},
		Socket: SocketConfig{
			ReconnectInterval:    2 * time.Second,
			MaxReconnectAttempts: 10,
			SendBuffer:           256,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and finally the environment, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first offending fields.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
	}
	return fmt.Errorf("invalid config: %w", err)
}

func (c *Config) applyEnv() error {
	c.APIBaseURL = getEnv("CHAT_API_URL", c.APIBaseURL)
	c.SocketURL = getEnv("CHAT_SOCKET_URL", c.SocketURL)
	c.LogLevel = getEnv("CHAT_LOG_LEVEL", c.LogLevel)
	c.MetricsAddr = getEnv("CHAT_METRICS_ADDR", c.MetricsAddr)
	c.Store.Driver = getEnv("CHAT_STORE_DRIVER", c.Store.Driver)
	c.Store.Path = getEnv("CHAT_STORE_PATH", c.Store.Path)
	c.Store.DatabaseURL = getEnv("CHAT_DATABASE_URL", c.Store.DatabaseURL)
	c.Store.Key = getEnv("CHAT_STORE_KEY", c.Store.Key)
	c.Store.Profile = getEnv("CHAT_STORE_PROFILE", c.Store.Profile)

	var err error
	if c.Development, err = getEnvBool("CHAT_DEVELOPMENT", c.Development); err != nil {
		return err
	}
	if c.Chat.PageSize, err = getEnvInt("CHAT_PAGE_SIZE", c.Chat.PageSize); err != nil {
		return err
	}
	if c.Chat.TypingIdle, err = getEnvDuration("CHAT_TYPING_IDLE", c.Chat.TypingIdle); err != nil {
		return err
	}
	if c.Chat.ReadReceiptDelay, err = getEnvDuration("CHAT_READ_RECEIPT_DELAY", c.Chat.ReadReceiptDelay); err != nil {
		return err
	}
	if c.Chat.RequestTimeout, err = getEnvDuration("CHAT_REQUEST_TIMEOUT", c.Chat.RequestTimeout); err != nil {
		return err
	}
	if c.Socket.ReconnectInterval, err = getEnvDuration("CHAT_RECONNECT_INTERVAL", c.Socket.ReconnectInterval); err != nil {
		return err
	}
	if c.Socket.MaxReconnectAttempts, err = getEnvInt("CHAT_MAX_RECONNECT_ATTEMPTS", c.Socket.MaxReconnectAttempts); err != nil {
		return err
	}
	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".petzone-chat"
	}
	return dir + string(os.PathSeparator) + "petzone-chat"
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
