// Package format builds the human-readable side of tool results.
//
// Summaries are deterministic so they can be compared verbatim in tests.
// A Formatter is built once from Config and decides whether the payload is
// returned as structuredContent or as an extra JSON text block.
package format
