// Package logger builds the structured slog logger shared by the proxy.
// Level and output format follow the configured environment.
package logger
