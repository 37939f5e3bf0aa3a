// Package logging provides structured logging utilities for todoist-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction for text or JSON output on stderr
//   - PII sanitization (email anonymization, token masking)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "tasks.filter")
//	logger.Info("draining pages",
//	    logging.Project(projectID),
//	    logging.Count(len(tasks)))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("resolved assignee",
//	    logging.UserHash(collaborator.Email))
//
// # Security Considerations
//
//   - Collaborator emails are hashed to prevent PII leakage while allowing correlation
//   - The API token is never logged directly
package logging
