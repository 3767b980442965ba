// Package config loads the checker configuration from a YAML file with
// environment overrides. The result is validated once at startup and is
// read-only afterwards; pass it explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultPath         = "config.yaml"
	DefaultUserAgent    = "Magic Browser"
	DefaultPushoverURL  = "https://api.pushover.net/1/messages.json"
	DefaultLoggingLevel = "info"

	dateLayout = "2006-01-02"
)

// --------------------------------------------------------------------------
// Config struct
// --------------------------------------------------------------------------

// PushoverCredentials authenticate against the Pushover API.
// Both are required unless the config is loaded with SkipCredentials.
type PushoverCredentials struct {
	APIToken string `yaml:"api_token"`
	UserKey  string `yaml:"user_key"`
}

type Config struct {
	// Lookahead window
	StartDate string `yaml:"start_date" validate:"required"`
	LimitDate string `yaml:"limit_date" validate:"required"`
	Limit     int    `yaml:"limit" validate:"gte=0"` // days, display and URL only

	// Availability endpoint. %(start_date)s and %(limit)s are substituted.
	URL                   string `yaml:"url" validate:"required"`
	UserAgent             string `yaml:"user_agent"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" validate:"gte=0"`
	MaxRequestsPerMinute  int    `yaml:"max_requests_per_minute" validate:"gte=0"`

	// Notifications
	Pushover    PushoverCredentials `yaml:"pushover_credentials"`
	PushoverURL string              `yaml:"pushover_url" validate:"omitempty,url"`

	// Heartbeat
	AliveCheck       bool   `yaml:"alive_check"`
	HourOfAliveCheck int    `yaml:"hour_of_alive_check" validate:"gte=0,lte=23"`
	Timezone         string `yaml:"timezone"`

	// Loop
	RunInLoop         bool `yaml:"run_in_loop"`
	IntervalInSeconds int  `yaml:"interval_in_seconds" validate:"gte=0"`

	// Unknown levels fall back to info.
	LoggingLevel string `yaml:"logging_level"`

	// Status server (empty address disables it)
	StatusAddr        string   `yaml:"status_addr"`
	StatusCORSOrigins []string `yaml:"status_cors_origins"`

	// Derived at load time.
	StartDay time.Time      `yaml:"-" validate:"-"`
	LimitDay time.Time      `yaml:"-" validate:"-"`
	Location *time.Location `yaml:"-" validate:"-"`
}

// ConfigError reports an invalid or missing configuration value. It is
// always fatal.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Default returns a Config populated with optional-field defaults.
func Default() *Config {
	return &Config{
		UserAgent:         DefaultUserAgent,
		PushoverURL:       DefaultPushoverURL,
		LoggingLevel:      DefaultLoggingLevel,
		StatusCORSOrigins: []string{"*"},
	}
}

// Path resolves the config file location: explicit flag, then
// CHECKER_CONFIG, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	return envOr("CHECKER_CONFIG", DefaultPath)
}

// LoadOption adjusts validation.
type LoadOption func(*loadOptions)

type loadOptions struct {
	skipCredentials bool
}

// SkipCredentials accepts a config without Pushover credentials. Used by
// dry runs, which never reach Pushover.
func SkipCredentials() LoadOption {
	return func(o *loadOptions) { o.skipCredentials = true }
}

// Load reads, overrides, and validates the configuration at path.
func Load(path string, opts ...LoadOption) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "file", Err: err}
	}
	return Parse(data, opts...)
}

// Parse decodes YAML, applies environment overrides, and validates.
func Parse(data []byte, opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Field: "file", Err: err}
	}
	cfg.applyEnv()
	if err := cfg.validate(o); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets secrets and deployment knobs live outside the YAML file.
func (c *Config) applyEnv() {
	c.Pushover.APIToken = envOr("PUSHOVER_API_TOKEN", c.Pushover.APIToken)
	c.Pushover.UserKey = envOr("PUSHOVER_USER_KEY", c.Pushover.UserKey)
	c.LoggingLevel = strings.ToLower(envOr("LOGGING_LEVEL", c.LoggingLevel))
	c.StatusAddr = envOr("CHECKER_STATUS_ADDR", c.StatusAddr)
	c.RunInLoop = envBool("CHECKER_RUN_IN_LOOP", c.RunInLoop)
	c.IntervalInSeconds = envInt("CHECKER_INTERVAL_IN_SECONDS", c.IntervalInSeconds)
}

func (c *Config) validate(o loadOptions) error {
	if err := validate.Struct(c); err != nil {
		return validationError("", err)
	}

	if !o.skipCredentials {
		for _, f := range []struct{ name, value string }{
			{"pushover_credentials.api_token", c.Pushover.APIToken},
			{"pushover_credentials.user_key", c.Pushover.UserKey},
		} {
			if err := validate.Var(f.value, "required"); err != nil {
				return validationError(f.name, err)
			}
		}
	}

	var err error
	if c.StartDay, err = time.Parse(dateLayout, c.StartDate); err != nil {
		return &ConfigError{Field: "start_date", Err: err}
	}
	if c.LimitDay, err = time.Parse(dateLayout, c.LimitDate); err != nil {
		return &ConfigError{Field: "limit_date", Err: err}
	}

	if c.RunInLoop && c.IntervalInSeconds <= 0 {
		return &ConfigError{Field: "interval_in_seconds", Err: errors.New("must be positive when run_in_loop is set")}
	}

	c.Location = time.Local
	if c.Timezone != "" {
		if c.Location, err = time.LoadLocation(c.Timezone); err != nil {
			return &ConfigError{Field: "timezone", Err: err}
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Derived values
// --------------------------------------------------------------------------

// FetchURL substitutes start_date and limit into the URL template.
// %(name)s and {name} placeholder forms are both accepted. As with
// %-formatting, "%%" stands for a literal "%", so percent-encoded
// characters in a %(name)s template are written as "%%2C".
func (c *Config) FetchURL() string {
	limit := strconv.Itoa(c.Limit)
	return strings.NewReplacer(
		"%%", "%",
		"%(start_date)s", c.StartDate,
		"%(limit)s", limit,
		"%(limit)d", limit,
		"{start_date}", c.StartDate,
		"{limit}", limit,
	).Replace(c.URL)
}

// Interval is the wait between cycles.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalInSeconds) * time.Second
}

// RequestTimeout is zero (no timeout) unless configured.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LogLevel maps logging_level onto slog. Unknown names mean info.
func (c *Config) LogLevel() slog.Level {
	switch c.LoggingLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.Pushover.APIToken = mask(c.Pushover.APIToken)
	out.Pushover.UserKey = mask(c.Pushover.UserKey)
	return out
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report YAML key names instead of Go field names; "-" skips the field.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
	})
	return v
}

// validationError converts the first validator failure into a ConfigError.
// An empty field takes the name from the failing struct field.
func validationError(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Field: "config", Err: err}
	}
	fe := verrs[0]
	if field == "" {
		field = fieldPath(fe)
	}
	return &ConfigError{Field: field, Err: fmt.Errorf("failed %q validation (value %v)", fe.Tag(), fe.Value())}
}

// fieldPath drops the leading struct name, e.g. "Config.pushover_credentials.api_token".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
