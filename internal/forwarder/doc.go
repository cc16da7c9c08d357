// Package forwarder maps inbound API paths onto Fantasy Premier League API
// paths through a static route table and relays the upstream JSON.
//
// Each request results in exactly one upstream GET. A 2xx JSON response is
// returned as 200 with the upstream bytes unchanged; any failure becomes a
// 500 with the body {"error": "<description>"}. Path parameters are decimal
// integers; other input never matches a route.
package forwarder
