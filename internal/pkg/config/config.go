package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMongo = "mongo"
	BackendRedis = "redis"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	StoreBackend string `env:"STORE_BACKEND, default=mongo"`
	SeedFile     string `env:"SEED_FILE"`
	SeedWorkers  int    `env:"SEED_WORKERS,  default=4"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	BcryptCost     int    `env:"BCRYPT_COST,     default=10"`
	CredentialMode string `env:"CREDENTIAL_MODE, default=plain"`
	JWTSecret      string `env:"JWT_SECRET"`
	CookieName     string `env:"COOKIE_NAME,     default=user"`
}

// MongoConfig accepts either a full URI or the individual parts the service
// historically used (MONGO_USER, MONGO_PASSWORD, MONGO_HOST, MONGO_PORT).
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	User     string `env:"MONGO_USER"`
	Password string `env:"MONGO_PASSWORD"`
	Host     string `env:"MONGO_HOST, default=localhost"`
	Port     string `env:"MONGO_PORT, default=27017"`
	Database string `env:"MONGO_DB,   default=auth_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ConnectionURI returns URI when set, otherwise composes one from the parts.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(m.Host, m.Port), Path: "/"}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Password)
		u.RawQuery = "authMechanism=DEFAULT"
	}
	return u.String()
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks the settings envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendMongo, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMongo, BackendRedis, c.StoreBackend))
	}
	switch c.Auth.CredentialMode {
	case "plain":
	case "jwt":
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when CREDENTIAL_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("CREDENTIAL_MODE must be \"plain\" or \"jwt\", got %q", c.Auth.CredentialMode))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("COOKIE_NAME must not be empty"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
