// Package config loads the server configuration.
//
// Values are layered, lowest priority first: built-in defaults, an optional
// YAML file, a dotenv file, the process environment and finally the
// command-line flags applied by the serve command.
//
// Example YAML file:
//
//	apiKey: 0123456789abcdef
//	timezone: Europe/Berlin
//	outputMode: text
//	readOnly: true
//	requestTimeout: 15s
//	transport: streamable-http
//	httpToken: change-me-to-a-long-secret
package config
