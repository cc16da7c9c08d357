// Package upstream is the outbound side of the proxy. It sends a single GET
// with the configured User-Agent to the Fantasy Premier League API and
// returns the body untouched, or an error when the transport fails, the
// status is not 2xx or the body is not JSON.
package upstream
