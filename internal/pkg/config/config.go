package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/99minutos/catalog-api/internal/core/service"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Password PasswordConfig
	Lockout  LockoutConfig
	Mongo    MongoConfig
	Redis    RedisConfig

	StoreTimeout        time.Duration `env:"STORE_TIMEOUT,        default=5s"`
	BootstrapRoles      []string      `env:"BOOTSTRAP_ROLES,      default=Admin,User"`
	CompensationWorkers int           `env:"COMPENSATION_WORKERS, default=2"`
}

type JWTConfig struct {
	SigningKey string        `env:"JWT_SIGNING_KEY"`
	Issuer     string        `env:"JWT_ISSUER,   default=catalog-api"`
	Audience   string        `env:"JWT_AUDIENCE, default=catalog-clients"`
	TTL        time.Duration `env:"JWT_TTL,      default=1h"`
}

type PasswordConfig struct {
	MinLength     int  `env:"PASSWORD_MIN_LENGTH,     default=8"`
	RequireUpper  bool `env:"PASSWORD_REQUIRE_UPPER,  default=true"`
	RequireLower  bool `env:"PASSWORD_REQUIRE_LOWER,  default=true"`
	RequireDigit  bool `env:"PASSWORD_REQUIRE_DIGIT,  default=true"`
	RequireSymbol bool `env:"PASSWORD_REQUIRE_SYMBOL, default=true"`
	BcryptCost    int  `env:"BCRYPT_COST,             default=10"`
}

type LockoutConfig struct {
	Threshold int           `env:"LOCKOUT_THRESHOLD, default=5"`
	Window    time.Duration `env:"LOCKOUT_WINDOW,    default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service must not start with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWT.SigningKey) < service.MinSigningKeyBytes {
		errs = append(errs, fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes", service.MinSigningKeyBytes))
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required"))
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be at least 1"))
	}
	if c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31 {
		errs = append(errs, errors.New("BCRYPT_COST must be between 4 and 31"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether logs should be emitted as plain JSON.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
