// Package common holds the plumbing shared by every tool: the Definition
// type with its mutability annotations, the typed handler that binds
// arguments and builds results, the instrumented wrapper that records
// metrics and audit logs, and structured-output validation.
package common
