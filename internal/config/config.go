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

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// Transport names accepted by the serve command.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Environment variables read by Load.
const (
	EnvAPIKey         = "TODOIST_API_KEY"
	EnvBaseURL        = "TODOIST_BASE_URL"
	EnvTimezone       = "TODOIST_TIMEZONE"
	EnvOutputMode     = "TODOIST_OUTPUT_MODE"
	EnvPreviewLimit   = "TODOIST_PREVIEW_LIMIT"
	EnvReadOnly       = "TODOIST_READ_ONLY"
	EnvRequestTimeout = "TODOIST_REQUEST_TIMEOUT"
	EnvValidateOutput = "TODOIST_VALIDATE_OUTPUT"
	EnvTransport      = "TODOIST_MCP_TRANSPORT"
	EnvHTTPAddr       = "TODOIST_MCP_HTTP_ADDR"
	EnvHTTPToken      = "TODOIST_MCP_HTTP_TOKEN"
)

// MinHTTPTokenLength is the shortest accepted HTTPToken.
const MinHTTPTokenLength = 16

// DefaultHTTPAddr binds the streamable-http transport to loopback only.
const DefaultHTTPAddr = "127.0.0.1:8080"

// DefaultEnvFile is loaded when present and LoadOptions.EnvFile is empty.
const DefaultEnvFile = ".env"

// Config holds the server settings that are fixed for the life of the
// process.
type Config struct {
	// APIKey is the Todoist personal API token.
	APIKey string `yaml:"apiKey"`

	// BaseURL overrides the Todoist REST API root.
	BaseURL string `yaml:"baseUrl"`

	// Timezone is the IANA name used to interpret "today" and to render
	// local dates. Defaults to UTC.
	Timezone string `yaml:"timezone"`

	// OutputMode is "structured" or "text".
	OutputMode string `yaml:"outputMode"`

	// PreviewLimit is the number of preview lines in list summaries.
	PreviewLimit int `yaml:"previewLimit"`

	// ReadOnly registers only the tools that never change data.
	ReadOnly bool `yaml:"readOnly"`

	// RequestTimeout bounds every Todoist API request.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// ValidateOutput checks structured tool results against their output
	// schema and logs violations.
	ValidateOutput bool `yaml:"validateOutput"`

	// Transport is "stdio" or "streamable-http".
	Transport string `yaml:"transport"`

	// HTTPAddr is the listen address for the streamable-http transport.
	HTTPAddr string `yaml:"httpAddr"`

	// HTTPToken is the bearer token streamable-http clients must present.
	HTTPToken string `yaml:"httpToken"`
}

// LoadOptions selects the optional files Load reads.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. A missing file is an error.
	ConfigFile string

	// EnvFile is a dotenv file. When empty, DefaultEnvFile is loaded if it
	// exists. Variables already set in the environment win.
	EnvFile string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:        todoist.DefaultBaseURL,
		Timezone:       "UTC",
		OutputMode:     string(format.OutputStructured),
		PreviewLimit:   format.DefaultPreviewLimit,
		RequestTimeout: todoist.DefaultTimeout,
		Transport:      TransportStdio,
		HTTPAddr:       DefaultHTTPAddr,
	}
}

// Load builds a Config from defaults, then the YAML file, then the process
// environment (including the dotenv file). Command-line flags are applied
// on top by the caller.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return cfg, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get(EnvAPIKey); ok {
		c.APIKey = v
	}
	if v, ok := get(EnvBaseURL); ok {
		c.BaseURL = v
	}
	if v, ok := get(EnvTimezone); ok {
		c.Timezone = v
	}
	if v, ok := get(EnvOutputMode); ok {
		c.OutputMode = v
	}
	if v, ok := get(EnvTransport); ok {
		c.Transport = v
	}
	if v, ok := get(EnvHTTPAddr); ok {
		c.HTTPAddr = v
	}
	if v, ok := get(EnvHTTPToken); ok {
		c.HTTPToken = v
	}
	if v, ok := get(EnvPreviewLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPreviewLimit, v, err)
		}
		c.PreviewLimit = n
	}
	if v, ok := get(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRequestTimeout, v, err)
		}
		c.RequestTimeout = d
	}
	if v, ok := get(EnvReadOnly); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvReadOnly, v, err)
		}
		c.ReadOnly = b
	}
	if v, ok := get(EnvValidateOutput); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvValidateOutput, v, err)
		}
		c.ValidateOutput = b
	}
	return nil
}

// Validate checks the configuration and reports the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("todoist API key is required (set %s or use --api-key)", EnvAPIKey)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := format.ParseOutputMode(c.OutputMode); err != nil {
		return err
	}
	if c.PreviewLimit < 0 {
		return fmt.Errorf("preview limit must not be negative, got %d", c.PreviewLimit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	switch c.Transport {
	case TransportStdio:
	case TransportStreamableHTTP:
		if c.HTTPAddr == "" {
			return fmt.Errorf("http address is required for the %s transport", TransportStreamableHTTP)
		}
		if strings.TrimSpace(c.HTTPToken) == "" {
			return fmt.Errorf("http bearer token is required for the %s transport (set %s or use --http-token)", TransportStreamableHTTP, EnvHTTPToken)
		}
		if len(c.HTTPToken) < MinHTTPTokenLength {
			return fmt.Errorf("http bearer token must be at least %d characters", MinHTTPTokenLength)
		}
	default:
		return fmt.Errorf("invalid transport %q, must be one of: %s, %s", c.Transport, TransportStdio, TransportStreamableHTTP)
	}
	return nil
}

// Location loads the configured timezone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FormatConfig returns the formatter settings. Call Validate first.
func (c *Config) FormatConfig() format.Config {
	mode, err := format.ParseOutputMode(c.OutputMode)
	if err != nil {
		mode = format.OutputStructured
	}
	return format.Config{OutputMode: mode, PreviewLimit: c.PreviewLimit}
}

// ClientConfig returns the Todoist client settings.
func (c *Config) ClientConfig() todoist.Config {
	return todoist.Config{
		Token:   c.APIKey,
		BaseURL: c.BaseURL,
		Timeout: c.RequestTimeout,
	}
}
