// Package handler holds the proxy's HTTP surface outside the forwarding
// table: the liveness index, the allow-all CORS middleware and the request
// logging middleware that feeds the metrics collector.
package handler
