package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/todoist-mcp/internal/config"
)

// configFlags are the command-line overrides for config.Config. A flag is
// applied only when set explicitly, so the environment and the config file
// still provide values for flags left at their defaults.
type configFlags struct {
	configFile string
	envFile    string

	apiKey         string
	baseURL        string
	timezone       string
	requestTimeout time.Duration

	// serve only
	outputMode     string
	previewLimit   int
	readOnly       bool
	validateOutput bool
	transport      string
	httpAddr       string
	httpToken      string
}

func (f *configFlags) registerCommon(cmd *cobra.Command) {
	def := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&f.configFile, "config", "", "Path to a YAML config file")
	flags.StringVar(&f.envFile, "env-file", "", "Path to a dotenv file (default: .env when present)")
	flags.StringVar(&f.apiKey, "api-key", "", "Todoist API token (prefer the "+config.EnvAPIKey+" env var)")
	flags.StringVar(&f.baseURL, "base-url", def.BaseURL, "Todoist REST API base URL")
	flags.StringVar(&f.timezone, "timezone", def.Timezone, "IANA timezone used for dates and \"today\"")
	flags.DurationVar(&f.requestTimeout, "request-timeout", def.RequestTimeout, "Timeout for each Todoist API request")
}

func (f *configFlags) registerServe(cmd *cobra.Command) {
	f.registerCommon(cmd)
	def := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&f.outputMode, "output-mode", def.OutputMode, "Tool result shape: structured or text")
	flags.IntVar(&f.previewLimit, "preview-limit", def.PreviewLimit, "Number of preview lines in list summaries")
	flags.BoolVar(&f.readOnly, "read-only", false, "Register only tools that never change data")
	flags.BoolVar(&f.validateOutput, "validate-output", false, "Validate structured results against output schemas and log violations")
	flags.StringVar(&f.transport, "transport", def.Transport, "Transport type: stdio or streamable-http")
	flags.StringVar(&f.httpAddr, "http-addr", def.HTTPAddr, "HTTP server address (for streamable-http transport)")
	flags.StringVar(&f.httpToken, "http-token", "", "Bearer token HTTP clients must present (for streamable-http transport)")
}

// load builds the configuration: defaults, config file, env file,
// environment, then explicitly set flags.
func (f *configFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: f.configFile,
		EnvFile:    f.envFile,
	})
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("timezone") {
		cfg.Timezone = f.timezone
	}
	if changed("request-timeout") {
		cfg.RequestTimeout = f.requestTimeout
	}
	if changed("output-mode") {
		cfg.OutputMode = f.outputMode
	}
	if changed("preview-limit") {
		cfg.PreviewLimit = f.previewLimit
	}
	if changed("read-only") {
		cfg.ReadOnly = f.readOnly
	}
	if changed("validate-output") {
		cfg.ValidateOutput = f.validateOutput
	}
	if changed("transport") {
		cfg.Transport = f.transport
	}
	if changed("http-addr") {
		cfg.HTTPAddr = f.httpAddr
	}
	if changed("http-token") {
		cfg.HTTPToken = f.httpToken
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
