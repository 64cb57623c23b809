// Package config centralises runtime configuration for the Bitfinex client.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment identifies the runtime environment.
type Environment string

const (
	// EnvDev marks the development environment.
	EnvDev Environment = "dev"
	// EnvStaging marks the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd marks the production environment.
	EnvProd Environment = "prod"
)

const (
	// DefaultConfigPath mirrors the credential file location used by the command line driver.
	DefaultConfigPath = "config/api.yml"
	// DefaultBaseURL is the public Bitfinex REST host.
	DefaultBaseURL = "https://api.bitfinex.com"

	defaultHTTPTimeout     = 10 * time.Second
	defaultTickerTTL       = 60 * time.Second
	defaultTrackerCapacity = 10000
	defaultRateLimit       = 10.0
	defaultRateBurst       = 5
	defaultPublicRetries   = 3
)

// Credentials captures API credentials used for authenticated requests.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Valid reports whether both halves of the key pair are present.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APISecret) != ""
}

// Settings contains the client configuration tree loaded from defaults and overrides.
type Settings struct {
	Environment Environment
	Credentials Credentials
	BaseURL     string
	HTTPTimeout time.Duration
	// RateLimit is the sustained request rate per second; zero disables limiting.
	RateLimit     float64
	RateBurst     int
	PublicRetries int
	TickerTTL     time.Duration
	// TrackerCapacity bounds the number of orders remembered per side.
	TrackerCapacity int
	// Fees maps a routing venue to its fee rate on executed notional.
	Fees     map[string]float64
	LogLevel string
	Metrics  bool
}

// fileSettings is the on-disk layout of config/api.yml. Only key and secret are required.
type fileSettings struct {
	Key             string             `yaml:"key"`
	Secret          string             `yaml:"secret"`
	Environment     string             `yaml:"environment"`
	BaseURL         string             `yaml:"base_url"`
	HTTPTimeout     string             `yaml:"http_timeout"`
	RateLimit       *float64           `yaml:"rate_limit"`
	RateBurst       int                `yaml:"rate_burst"`
	PublicRetries   *int               `yaml:"public_retries"`
	TickerTTL       string             `yaml:"ticker_ttl"`
	TrackerCapacity int                `yaml:"tracker_capacity"`
	Fees            map[string]float64 `yaml:"fees"`
	LogLevel        string             `yaml:"log_level"`
	Metrics         *bool              `yaml:"metrics"`
}

// Default returns the default configuration.
func Default() Settings {
	return Settings{
		Environment:     EnvProd,
		Credentials:     Credentials{APIKey: "", APISecret: ""},
		BaseURL:         DefaultBaseURL,
		HTTPTimeout:     defaultHTTPTimeout,
		RateLimit:       defaultRateLimit,
		RateBurst:       defaultRateBurst,
		PublicRetries:   defaultPublicRetries,
		TickerTTL:       defaultTickerTTL,
		TrackerCapacity: defaultTrackerCapacity,
		Fees: map[string]float64{
			"bitstamp": 0.0035,
			"bitfinex": 0.0015,
		},
		LogLevel: "info",
		Metrics:  false,
	}
}

// FromEnv loads configuration values from environment variables, overriding defaults.
func FromEnv() Settings {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML settings file on top of the defaults.
func LoadFile(path string) (Settings, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// LoadOrDefault resolves settings from defaults, the YAML file at path, a .env file in the
// working directory and the process environment, in that order of precedence (last wins).
// A missing file is not an error. A malformed file is reported but the returned settings
// remain usable, so callers may continue unauthenticated.
func LoadOrDefault(path string) (Settings, bool, error) {
	LoadDotEnv("")
	cfg := Default()
	loaded := false
	var fileErr error
	if strings.TrimSpace(path) != "" {
		switch err := cfg.mergeFile(path); {
		case err == nil:
			loaded = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			cfg = Default()
			fileErr = err
		}
	}
	cfg.applyEnv()
	return cfg, loaded, fileErr
}

// LoadDotEnv populates the process environment from a .env file when one exists.
// Variables already present in the environment are left untouched.
func LoadDotEnv(path string) {
	if strings.TrimSpace(path) != "" {
		_ = godotenv.Load(path)
		return
	}
	_ = godotenv.Load()
}

func (s *Settings) mergeFile(path string) error {
	// #nosec G304 -- path is operator provided.
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	raw = []byte(os.ExpandEnv(string(raw)))
	var file fileSettings
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return s.apply(file)
}

func (s *Settings) apply(file fileSettings) error {
	if v := strings.TrimSpace(file.Key); v != "" {
		s.Credentials.APIKey = v
	}
	if v := strings.TrimSpace(file.Secret); v != "" {
		s.Credentials.APISecret = v
	}
	if v := strings.TrimSpace(file.Environment); v != "" {
		s.Environment = Environment(strings.ToLower(v))
	}
	if v := strings.TrimSpace(file.BaseURL); v != "" {
		s.BaseURL = v
	}
	if v := strings.TrimSpace(file.HTTPTimeout); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("http_timeout: %w", err)
		}
		s.HTTPTimeout = dur
	}
	if file.RateLimit != nil {
		s.RateLimit = *file.RateLimit
	}
	if file.RateBurst > 0 {
		s.RateBurst = file.RateBurst
	}
	if file.PublicRetries != nil {
		s.PublicRetries = *file.PublicRetries
	}
	if v := strings.TrimSpace(file.TickerTTL); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ticker_ttl: %w", err)
		}
		s.TickerTTL = dur
	}
	if file.TrackerCapacity > 0 {
		s.TrackerCapacity = file.TrackerCapacity
	}
	for venue, rate := range file.Fees {
		key := strings.ToLower(strings.TrimSpace(venue))
		if key == "" {
			continue
		}
		if s.Fees == nil {
			s.Fees = make(map[string]float64)
		}
		s.Fees[key] = rate
	}
	if v := strings.TrimSpace(file.LogLevel); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if file.Metrics != nil {
		s.Metrics = *file.Metrics
	}
	return nil
}

func (s *Settings) applyEnv() {
	if env := strings.TrimSpace(os.Getenv("BITFINEX_ENV")); env != "" {
		s.Environment = Environment(strings.ToLower(env))
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_API_KEY")); v != "" {
		s.Credentials.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_API_SECRET")); v != "" {
		s.Credentials.APISecret = v
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_BASE_URL")); v != "" {
		s.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_HTTP_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			s.HTTPTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_RATE_LIMIT")); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate >= 0 {
			s.RateLimit = rate
		}
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_TICKER_TTL")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			s.TickerTTL = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_LOG_LEVEL")); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("BITFINEX_METRICS")); v != "" {
		s.Metrics = v == "true" || v == "1"
	}
}

// Option mutates Settings when applied via Apply.
type Option func(*Settings)

// Apply applies the provided Option set to a copy of the base Settings.
func Apply(base Settings, opts ...Option) Settings {
	cfg := base.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEnvironment configures the top-level environment.
func WithEnvironment(env Environment) Option {
	return func(s *Settings) {
		if env != "" {
			s.Environment = env
		}
	}
}

// WithCredentials overrides the API key pair.
func WithCredentials(key, secret string) Option {
	key = strings.TrimSpace(key)
	secret = strings.TrimSpace(secret)
	return func(s *Settings) {
		s.Credentials = Credentials{APIKey: key, APISecret: secret}
	}
}

// WithBaseURL overrides the REST host.
func WithBaseURL(baseURL string) Option {
	baseURL = strings.TrimSpace(baseURL)
	return func(s *Settings) {
		if baseURL != "" {
			s.BaseURL = baseURL
		}
	}
}

// WithHTTPTimeout overrides the HTTP timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(s *Settings) {
		if timeout > 0 {
			s.HTTPTimeout = timeout
		}
	}
}

// WithRateLimit overrides the request limiter. A zero rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Settings) {
		if perSecond >= 0 {
			s.RateLimit = perSecond
		}
		if burst > 0 {
			s.RateBurst = burst
		}
	}
}

// WithTickerTTL overrides the ticker cache lifetime.
func WithTickerTTL(ttl time.Duration) Option {
	return func(s *Settings) {
		if ttl > 0 {
			s.TickerTTL = ttl
		}
	}
}

// WithTrackerCapacity overrides the per-side order tracker bound.
func WithTrackerCapacity(capacity int) Option {
	return func(s *Settings) {
		if capacity > 0 {
			s.TrackerCapacity = capacity
		}
	}
}

// WithFee sets the fee rate for a routing venue.
func WithFee(venue string, rate float64) Option {
	venue = strings.ToLower(strings.TrimSpace(venue))
	return func(s *Settings) {
		if venue == "" {
			return
		}
		if s.Fees == nil {
			s.Fees = make(map[string]float64)
		}
		s.Fees[venue] = rate
	}
}

func (s Settings) clone() Settings {
	out := s
	out.Fees = make(map[string]float64, len(s.Fees))
	for k, v := range s.Fees {
		out.Fees[k] = v
	}
	return out
}
