// Package config loads the proxy configuration from an optional config.yaml
// and the environment. It covers the listen address (PORT), upstream base URL
// and User-Agent, the fixed league identifier, logging and metrics settings.
package config
