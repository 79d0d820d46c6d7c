package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration required by the API process.
// Values come from env; cmd/api loads an optional .env file first.
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Routing RoutingConfig
	Journal JournalConfig
	DB      DBConfig
	Redis   RedisConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type RoutingConfig struct {
	HotlineNumber string

	// Selector is one of first_available, round_robin, longest_idle.
	Selector string

	// MinutesPerCall drives the linear wait estimate for queued calls.
	MinutesPerCall int

	// RepresentativesFile is an optional JSON roster; empty means the built-in roster.
	RepresentativesFile string
}

type JournalConfig struct {
	// Store is memory or postgres.
	Store string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional. An empty Host disables event forwarding.
type RedisConfig struct {
	Host    string
	Port    int
	Channel string
}

const (
	JournalStoreMemory   = "memory"
	JournalStorePostgres = "postgres"

	defaultHotlineNumber  = "+1-800-VOICE-PILOT"
	defaultMinutesPerCall = 5
	defaultRedisChannel   = "hotline:events"
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Routing.HotlineNumber = strings.TrimSpace(os.Getenv("HOTLINE_NUMBER"))
	c.Routing.Selector = strings.TrimSpace(os.Getenv("ROUTING_SELECTOR"))
	{
		n, err := optionalInt("ROUTING_MINUTES_PER_CALL")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Routing.MinutesPerCall = n
	}
	c.Routing.RepresentativesFile = strings.TrimSpace(os.Getenv("REPRESENTATIVES_FILE"))

	c.Journal.Store = strings.TrimSpace(os.Getenv("JOURNAL_STORE"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := optionalInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := optionalInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	c.Redis.Channel = strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the config and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Routing.HotlineNumber == "" {
		c.Routing.HotlineNumber = defaultHotlineNumber
	}
	if c.Routing.Selector == "" {
		c.Routing.Selector = "first_available"
	}
	if !isValidSelector(c.Routing.Selector) {
		errs = append(errs, fmt.Errorf("ROUTING_SELECTOR must be one of first_available, round_robin, longest_idle, got %q", c.Routing.Selector))
	}
	if c.Routing.MinutesPerCall == 0 {
		c.Routing.MinutesPerCall = defaultMinutesPerCall
	}
	if c.Routing.MinutesPerCall < 0 {
		errs = append(errs, fmt.Errorf("ROUTING_MINUTES_PER_CALL must be positive, got %d", c.Routing.MinutesPerCall))
	}

	if c.Journal.Store == "" {
		c.Journal.Store = JournalStoreMemory
	}
	switch c.Journal.Store {
	case JournalStoreMemory:
	case JournalStorePostgres:
		errs = append(errs, c.validateDB()...)
	default:
		errs = append(errs, fmt.Errorf("JOURNAL_STORE must be one of memory, postgres, got %q", c.Journal.Store))
	}

	if c.Redis.Host != "" {
		if c.Redis.Port == 0 {
			c.Redis.Port = 6379
		}
		if c.Redis.Port < 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
		if c.Redis.Channel == "" {
			c.Redis.Channel = defaultRedisChannel
		}
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	return parseInt(key, v)
}

func optionalInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	return parseInt(key, v)
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSelector(v string) bool {
	switch v {
	case "first_available", "round_robin", "longest_idle":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
