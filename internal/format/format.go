package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// OutputMode selects how tool results are shaped.
type OutputMode string

const (
	// OutputStructured returns the summary as text content and the payload
	// as structuredContent.
	OutputStructured OutputMode = "structured"
	// OutputText returns the summary followed by a second text block with
	// the JSON payload, for clients that ignore structuredContent.
	OutputText OutputMode = "text"
)

// DefaultPreviewLimit is the number of preview lines shown in list summaries.
const DefaultPreviewLimit = 5

// ParseOutputMode validates a configured output mode. Empty means structured.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputStructured:
		return OutputStructured, nil
	case OutputText:
		return OutputText, nil
	default:
		return "", fmt.Errorf("invalid output mode %q, must be one of: structured, text", s)
	}
}

// Config configures a Formatter. It is fixed for the life of the server.
type Config struct {
	OutputMode   OutputMode
	PreviewLimit int
}

// DefaultConfig returns structured output with the default preview limit.
func DefaultConfig() Config {
	return Config{OutputMode: OutputStructured, PreviewLimit: DefaultPreviewLimit}
}

// Formatter builds summaries and tool results.
type Formatter struct {
	cfg Config
}

// New returns a Formatter. Zero fields in cfg fall back to DefaultConfig.
func New(cfg Config) *Formatter {
	if cfg.OutputMode == "" {
		cfg.OutputMode = OutputStructured
	}
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = DefaultPreviewLimit
	}
	return &Formatter{cfg: cfg}
}

// Config returns the formatter configuration.
func (f *Formatter) Config() Config {
	return f.cfg
}

// Output is what a tool adapter produces before it is turned into an MCP result.
type Output struct {
	Text       string
	Structured any
}

// Result converts out into an MCP tool result according to the output mode.
func (f *Formatter) Result(out Output) (*mcp.CallToolResult, error) {
	if out.Structured == nil {
		return mcp.NewToolResultText(out.Text), nil
	}

	if f.cfg.OutputMode == OutputText {
		payload, err := json.MarshalIndent(out.Structured, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(out.Text),
				mcp.NewTextContent(string(payload)),
			},
		}, nil
	}

	return mcp.NewToolResultStructured(out.Structured, out.Text), nil
}
