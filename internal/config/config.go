package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"exampro/internal/crypto"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. It is
// only accepted with the in-memory store.
const DevJWTSecret = "dev-secret"

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3001"`
	GRPCAddr    string `env:"GRPC_ADDR" envDefault:":9094"`
	DatabaseURL string `env:"DATABASE_URL"`
	Store       string `env:"STORE" envDefault:"postgres"`

	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"exampro"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	ServiceAuthToken string        `env:"SERVICE_AUTH_TOKEN"`
	GradesGRPCAddr   string        `env:"GRADES_GRPC_ADDR" envDefault:"127.0.0.1:9094"`
	GRPCDialTimeout  time.Duration `env:"GRPC_DIAL_TIMEOUT" envDefault:"5s"`

	ExamStatusJobEnabled  bool          `env:"EXAM_STATUS_JOB_ENABLED" envDefault:"false"`
	ExamStatusJobInterval time.Duration `env:"EXAM_STATUS_JOB_INTERVAL" envDefault:"1h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Empty values mean a random password is generated per account.
	DefaultUserPassword    string `env:"DEFAULT_USER_PASSWORD"`
	DefaultStudentPassword string `env:"DEFAULT_STUDENT_PASSWORD"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize clamps values that would weaken or break the server.
func (c *Config) Sanitize() {
	if c.BcryptCost < crypto.MinCost {
		c.BcryptCost = crypto.MinCost
	}
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = 24 * time.Hour
	}
	if c.ExamStatusJobInterval <= 0 {
		c.ExamStatusJobInterval = time.Hour
	}
	if c.GRPCDialTimeout <= 0 {
		c.GRPCDialTimeout = 5 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = StorePostgres
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE=postgres")
		}
		if c.JWTSecret == DevJWTSecret {
			return errors.New("JWT_SECRET must be set when STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}
