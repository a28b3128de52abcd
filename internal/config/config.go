// Package config defines the runtime configuration of cost-estimator and
// loads it from YAML, the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/cost-estimator/pkg/constants"
	"github.com/iwvelando/cost-estimator/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for cost-estimator.
type Configuration struct {
	Logging      LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Server       ServerConfig    `yaml:"server" mapstructure:"server"`
	Storage      StorageConfig   `yaml:"storage" mapstructure:"storage"`
	RateLimit    RateLimitConfig `yaml:"rateLimit" mapstructure:"ratelimit"`
	Auth         AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Destinations string          `yaml:"destinations,omitempty" mapstructure:"destinations"` // optional table file
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputfile"` // optional file output
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address         string        `yaml:"address" mapstructure:"address"`
	MaxBodySize     string        `yaml:"maxBodySize" mapstructure:"maxbodysize"`
	ReadTimeout     time.Duration `yaml:"readTimeout" mapstructure:"readtimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" mapstructure:"writetimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" mapstructure:"idletimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" mapstructure:"shutdowntimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" mapstructure:"allowedorigins"`
	// TrustedProxies lists the addresses or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers name the client. Empty trusts no one.
	TrustedProxies []string `yaml:"trustedProxies" mapstructure:"trustedproxies"`
	bodySizeBytes  int64
	proxyPrefixes  []netip.Prefix
}

// StorageConfig selects where plans and leads live.
type StorageConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres
	Path   string `yaml:"path" mapstructure:"path"`     // sqlite file
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // postgres connection string
}

// RateLimitConfig tunes the lead submission and admin sign-in limiters.
type RateLimitConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"` // memory, redis
	Window        time.Duration `yaml:"window" mapstructure:"window"`
	Max           int           `yaml:"max" mapstructure:"max"`
	KeyPrefix     string        `yaml:"keyPrefix" mapstructure:"keyprefix"`
	SessionWindow time.Duration `yaml:"sessionWindow" mapstructure:"sessionwindow"`
	SessionMax    int           `yaml:"sessionMax" mapstructure:"sessionmax"`
	// IdentifierKey keys the hash of caller addresses. Defaults to the
	// token signing key.
	IdentifierKey string      `yaml:"identifierKey" mapstructure:"identifierkey"`
	Redis         RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig locates the limiter's Redis server.
type RedisConfig struct {
	Address  string `yaml:"address" mapstructure:"address"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// AuthConfig holds token and admin credential settings.
type AuthConfig struct {
	SigningKey        string        `yaml:"signingKey" mapstructure:"signingkey"`
	Issuer            string        `yaml:"issuer" mapstructure:"issuer"`
	Audience          string        `yaml:"audience" mapstructure:"audience"`
	TokenTTL          time.Duration `yaml:"tokenTTL" mapstructure:"tokenttl"`
	AdminPasswordHash string        `yaml:"adminPasswordHash" mapstructure:"adminpasswordhash"`
}

// Default returns the configuration used when no file is present.
func Default() *Configuration {
	cfg := &Configuration{}
	v := newViper()
	if err := v.Unmarshal(cfg); err != nil {
		// Defaults are static; a failure here is a programming error.
		panic(fmt.Sprintf("decoding default configuration: %v", err))
	}
	if err := cfg.normalize(); err != nil {
		panic(fmt.Sprintf("normalizing default configuration: %v", err))
	}
	return cfg
}

// LoadDotEnv loads variables from path into the process environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there, applying COST_ESTIMATOR_* environment overrides. If the
// file does not exist, defaults and the environment are used.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := configuration.normalize(); err != nil {
		return nil, err
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", "64K")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.allowedOrigins", []string{})
	v.SetDefault("server.trustedProxies", []string{})

	v.SetDefault("storage.driver", constants.StorageMemory)
	v.SetDefault("storage.path", "data/cost-estimator.db")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("rateLimit.backend", constants.RateLimitMemory)
	v.SetDefault("rateLimit.window", time.Duration(constants.DefaultLeadWindowMinutes)*time.Minute)
	v.SetDefault("rateLimit.max", constants.DefaultLeadMaxSubmissions)
	v.SetDefault("rateLimit.keyPrefix", constants.DefaultRateLimitKeyPrefix)
	v.SetDefault("rateLimit.sessionWindow", time.Duration(constants.DefaultSessionWindowMinutes)*time.Minute)
	v.SetDefault("rateLimit.sessionMax", constants.DefaultSessionMaxAttempts)
	v.SetDefault("rateLimit.identifierKey", "")
	v.SetDefault("rateLimit.redis.address", "")
	v.SetDefault("rateLimit.redis.password", "")
	v.SetDefault("rateLimit.redis.db", 0)

	v.SetDefault("auth.signingKey", "")
	v.SetDefault("auth.issuer", constants.DefaultTokenIssuer)
	v.SetDefault("auth.audience", constants.DefaultTokenAudience)
	v.SetDefault("auth.tokenTTL", time.Duration(constants.DefaultTokenTTLHours)*time.Hour)
	v.SetDefault("auth.adminPasswordHash", "")

	v.SetDefault("destinations", "")

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate checks values that have no usable fallback.
func (c *Configuration) Validate() error {
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if err := validation.ValidateStorageDriver(c.Storage.Driver, c.Storage.Path, c.Storage.DSN); err != nil {
		return err
	}
	if err := validation.ValidateRateLimit(c.RateLimit.Backend, c.RateLimit.Window, c.RateLimit.Max, c.RateLimit.Redis.Address); err != nil {
		return err
	}
	if c.RateLimit.SessionWindow <= 0 {
		return fmt.Errorf("rateLimit.sessionWindow must be positive, got %s", c.RateLimit.SessionWindow)
	}
	if c.RateLimit.SessionMax < 1 {
		return fmt.Errorf("rateLimit.sessionMax must be at least 1, got %d", c.RateLimit.SessionMax)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.tokenTTL must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (s *ServerConfig) BodySizeBytes() int64 {
	return s.bodySizeBytes
}

// TrustedProxyPrefixes returns the parsed server.trustedProxies.
func (s *ServerConfig) TrustedProxyPrefixes() []netip.Prefix {
	return s.proxyPrefixes
}

// SetBodySizeBytes overrides the configured body limit.
func (s *ServerConfig) SetBodySizeBytes(size int64) {
	if size > 0 {
		s.bodySizeBytes = size
		s.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

func (c *Configuration) normalize() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.RateLimit.Backend = strings.ToLower(strings.TrimSpace(c.RateLimit.Backend))

	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}

	bytes, err := ParseSize(c.Server.MaxBodySize)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.Server.bodySizeBytes = bytes

	origins := c.Server.AllowedOrigins[:0]
	for _, o := range c.Server.AllowedOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.AllowedOrigins = origins

	prefixes, err := ParseTrustedProxies(c.Server.TrustedProxies)
	if err != nil {
		return err
	}
	c.Server.proxyPrefixes = prefixes
	return nil
}

// ParseTrustedProxies parses CIDRs such as "10.0.0.0/8" and bare addresses,
// which match only themselves. Blank entries are skipped.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, "/") {
			prefix, err := netip.ParsePrefix(trimmed)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", value, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", value, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
