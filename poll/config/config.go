package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	DefaultInterval     = 3 * time.Minute
	DefaultTimeout      = 10 * time.Second
	DefaultSampleAmount = 100.0
)

var (
	ErrInvalidInterval     = errors.New("invalid poll interval")
	ErrInvalidTimeout      = errors.New("invalid call timeout")
	ErrInvalidSampleAmount = errors.New("invalid sample amount")
	ErrInvalidEndpoint     = errors.New("invalid endpoint")
	ErrInvalidMonitorPair  = errors.New("invalid monitor pair")
)

//go:embed endpoints.toml
var defaultConfig []byte

// Config defines the polling configuration
type Config struct {
	// The TapTapSend scraper settings
	Scraper Scraper `toml:"scraper"`

	// How often a sweep runs, as a Go duration ("3m")
	Interval string `toml:"interval"`

	// The per-call timeout, as a Go duration ("10s")
	Timeout string `toml:"timeout"`

	// The polled endpoints, in sweep order
	Endpoints []Endpoint `toml:"endpoints"`

	// Pairs logged after every successful scrape
	MonitorPairs []MonitorPair `toml:"monitor_pairs"`

	// The amount of origin currency fees are quoted for
	SampleAmount float64 `toml:"sample_amount"`
}

// Endpoint is a single polled upstream endpoint
type Endpoint struct {
	Headers map[string]string `toml:"headers"`
	Payload map[string]any    `toml:"payload"`
	Name    string            `toml:"name"`
	URL     string            `toml:"url"`
	Method  string            `toml:"method"`
}

// Label is the name the endpoint is tracked under
func (e Endpoint) Label() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.URL)
}

// Scraper holds the rate scraper settings
type Scraper struct {
	Headers map[string]string `toml:"headers"`
	URL     string            `toml:"url"`
}

// MonitorPair is a currency pair logged on every scrape
type MonitorPair struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// DefaultConfig returns the default polling configuration
func DefaultConfig() *Config {
	cfg, err := parse(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded poll config: %v", err))
	}

	return cfg
}

// Read reads the configuration from the given path.
// Omitted scalar settings fall back to their defaults
func Read(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parse(content)
}

func parse(content []byte) (*Config, error) {
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	if cfg.Interval == "" {
		cfg.Interval = DefaultInterval.String()
	}

	if cfg.Timeout == "" {
		cfg.Timeout = DefaultTimeout.String()
	}

	if cfg.SampleAmount == 0 {
		cfg.SampleAmount = DefaultSampleAmount
	}

	for i := range cfg.Endpoints {
		if cfg.Endpoints[i].Method == "" {
			cfg.Endpoints[i].Method = http.MethodGet
		}

		cfg.Endpoints[i].Method = strings.ToUpper(cfg.Endpoints[i].Method)
	}

	return &cfg, nil
}

// ValidateConfig validates the polling configuration
func ValidateConfig(cfg *Config) error {
	if d, err := time.ParseDuration(cfg.Interval); err != nil || d <= 0 {
		return ErrInvalidInterval
	}

	if d, err := time.ParseDuration(cfg.Timeout); err != nil || d <= 0 {
		return ErrInvalidTimeout
	}

	if cfg.SampleAmount <= 0 {
		return ErrInvalidSampleAmount
	}

	if cfg.Scraper.URL != "" {
		if err := validateURL(cfg.Scraper.URL); err != nil {
			return fmt.Errorf("invalid scraper url: %w", err)
		}
	}

	for i, e := range cfg.Endpoints {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: #%d has no name", ErrInvalidEndpoint, i)
		}

		if err := validateURL(e.URL); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidEndpoint, e.Name, err)
		}

		switch e.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return fmt.Errorf("%w: %s: unsupported method %q", ErrInvalidEndpoint, e.Name, e.Method)
		}
	}

	for _, p := range cfg.MonitorPairs {
		if len(p.From) != 3 || len(p.To) != 3 {
			return fmt.Errorf("%w: %s/%s", ErrInvalidMonitorPair, p.From, p.To)
		}
	}

	return nil
}

// PollInterval returns the parsed sweep interval
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return DefaultInterval
	}

	return d
}

// CallTimeout returns the parsed per-call timeout
func (c *Config) CallTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}

	return d
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("missing host")
	}

	return nil
}
