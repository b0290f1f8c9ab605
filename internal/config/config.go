// Package config loads the runtime settings of the colloquy binaries.
//
// Sources, lowest priority first: built-in defaults, an optional config file,
// a .env file, COLLOQUY_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "COLLOQUY"
	// DefaultFile is looked up in the working directory when no file is given.
	DefaultFile = "colloquy"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Lock    LockConfig    `mapstructure:"lock"`
	Users   UsersConfig   `mapstructure:"users"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string   `mapstructure:"level"`
	Format string   `mapstructure:"format"`
	Redact []string `mapstructure:"redact"`
}

type StoreConfig struct {
	Backend       string         `mapstructure:"backend"`
	File          FileConfig     `mapstructure:"file"`
	Redis         RedisConfig    `mapstructure:"redis"`
	DynamoDB      DynamoDBConfig `mapstructure:"dynamodb"`
	EncryptionKey string         `mapstructure:"encryption_key"`
	FallbackKeys  []string       `mapstructure:"fallback_keys"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type DynamoDBConfig struct {
	Table string `mapstructure:"table"`
}

// LockConfig enables the cross-process conversation lock.
type LockConfig struct {
	Redis bool          `mapstructure:"redis"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type UsersConfig struct {
	Backend  string         `mapstructure:"backend"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
	Seed     string         `mapstructure:"seed"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// SetDefaults registers every key on v so that environment overrides apply
// even when no config file mentions the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(logging.FormatText))
	v.SetDefault("log.redact", logging.DefaultRedactPatterns)
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.file.dir", ".colloquy/sessions")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "colloquy:")
	v.SetDefault("store.redis.ttl", time.Duration(0))
	v.SetDefault("store.dynamodb.table", "")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("lock.redis", false)
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("users.backend", BackendMemory)
	v.SetDefault("users.dynamodb.table", "")
	v.SetDefault("users.seed", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", false)
}

// New returns a viper instance wired to the COLLOQUY_ environment.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv exports the variables of a .env file that are not already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file (explicit path or ./colloquy.{yaml,json,toml})
// into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(DefaultFile)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.Store.File.Dir == "" {
			errs = append(errs, errors.New("store.file.dir is required for the file backend"))
		}
	case BackendDynamoDB:
		if c.Store.DynamoDB.Table == "" {
			errs = append(errs, errors.New("store.dynamodb.table is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	switch c.Users.Backend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.Users.DynamoDB.Table == "" {
			errs = append(errs, errors.New("users.dynamodb.table is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown users.backend %q", c.Users.Backend))
	}

	if _, err := c.Encryption(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Encryption decodes the store keys. It returns nil when encryption is off.
func (c *Config) Encryption() (*middleware.EncryptionConfig, error) {
	if c.Store.EncryptionKey == "" {
		if len(c.Store.FallbackKeys) > 0 {
			return nil, errors.New("store.fallback_keys requires store.encryption_key")
		}
		return nil, nil
	}
	active, err := middleware.DecodeKey(c.Store.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.Store.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// UsesRedis reports whether any component needs a Redis client.
func (c *Config) UsesRedis() bool {
	return c.Store.Backend == BackendRedis || c.Lock.Redis
}

// UsesDynamoDB reports whether any component needs an AWS client.
func (c *Config) UsesDynamoDB() bool {
	return c.Store.Backend == BackendDynamoDB || c.Users.Backend == BackendDynamoDB
}
