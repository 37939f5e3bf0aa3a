package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg := configFromEnv(mapLookup(nil))

	assert.Equal(t, "todoist-mcp", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ExporterPrometheus, cfg.MetricsExporter)
	assert.Equal(t, ExporterNone, cfg.TracingExporter)
	assert.Equal(t, 0.1, cfg.TraceSamplingRate)
	assert.Equal(t, "/metrics", cfg.PrometheusEndpoint)
	assert.False(t, cfg.DetailedLabels)
	assert.True(t, cfg.AuditLogging.Enabled)
	assert.False(t, cfg.AuditLogging.IncludeArguments)
	require.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg := configFromEnv(mapLookup(map[string]string{
		"OTEL_SERVICE_NAME":          "todoist-staging",
		"INSTRUMENTATION_ENABLED":    "false",
		"METRICS_EXPORTER":           "STDOUT",
		"TRACING_EXPORTER":           "stdout",
		"OTEL_TRACES_SAMPLER_ARG":    "0.5",
		"POD_NAMESPACE":              "mcp",
		"HOSTNAME":                   "todoist-mcp-0",
		"METRICS_DETAILED_LABELS":    "true",
		"AUDIT_LOGGING_INCLUDE_ARGS": "1",
	}))

	assert.Equal(t, "todoist-staging", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, ExporterStdout, cfg.MetricsExporter)
	assert.Equal(t, ExporterStdout, cfg.TracingExporter)
	assert.Equal(t, 0.5, cfg.TraceSamplingRate)
	assert.Equal(t, "mcp", cfg.K8sNamespace)
	assert.Equal(t, "todoist-mcp-0", cfg.K8sPodName)
	assert.True(t, cfg.DetailedLabels)
	assert.True(t, cfg.AuditLogging.IncludeArguments)
}

func TestConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	cfg := configFromEnv(mapLookup(map[string]string{
		"INSTRUMENTATION_ENABLED": "maybe",
		"OTEL_TRACES_SAMPLER_ARG": "often",
		"OTEL_SERVICE_NAME":       "",
	}))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.1, cfg.TraceSamplingRate)
	assert.Equal(t, "todoist-mcp", cfg.ServiceName)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errContains string
	}{
		{
			name:   "prometheus",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone},
		},
		{
			name:   "otlp tracing with endpoint",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"},
		},
		{
			name:        "negative sampling rate",
			config:      Config{TraceSamplingRate: -0.5},
			errContains: "sampling rate",
		},
		{
			name:        "sampling rate above 1",
			config:      Config{TraceSamplingRate: 1.5},
			errContains: "sampling rate",
		},
		{
			name:        "unknown metrics exporter",
			config:      Config{MetricsExporter: "statsd"},
			errContains: "invalid metrics exporter",
		},
		{
			name:        "unknown tracing exporter",
			config:      Config{TracingExporter: "zipkin"},
			errContains: "invalid tracing exporter",
		},
		{
			name:        "otlp tracing without endpoint",
			config:      Config{TracingExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
		{
			name:        "otlp metrics without endpoint",
			config:      Config{MetricsExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
