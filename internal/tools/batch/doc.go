// Package batch provides common utilities for batch operations across all MCP tools.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Fanning out Todoist calls concurrently while keeping input order
//   - Choosing a failure policy per tool: FailFast or CollectPartial
//   - Recording per-item failures as {item, error, code}
package batch
