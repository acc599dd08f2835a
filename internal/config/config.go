package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8082"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	StoreDriver         string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI            string        `env:"MONGO_URI"`
	MongoDBName         string        `env:"MONGO_DB_NAME" envDefault:"userservice"`
	MongoCollection     string        `env:"MONGO_COLLECTION" envDefault:"users"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MongoEnsureIndexes  bool          `env:"MONGO_ENSURE_INDEXES" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads the env file named by START (or ./.env when present) and
// then parses the process environment.
func Load() (*Config, error) {
	if err := loadEnvFile(os.Getenv("START")); err != nil {
		return nil, err
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is not set in environment")
		}
		if c.MongoDBName == "" {
			return errors.New("MONGO_DB_NAME is not set in environment")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

func loadEnvFile(name string) error {
	if name != "" {
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("env file %s: %w", name, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("env file .env: %w", err)
	}
	return nil
}
