package forwarder

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// LeagueIDParam is the upstream placeholder filled from configuration rather
// than from the inbound path.
const LeagueIDParam = "league_id"

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// Route binds an inbound path template to an upstream path template.
// Params lists the integer path parameters of Path in order of appearance.
type Route struct {
	Name     string
	Path     string
	Upstream string
	Params   []string
}

// Routes is the forwarding table. Adding a route is a change to this slice.
var Routes = []Route{
	{
		Name:     "bootstrap-static",
		Path:     "/api/bootstrap-static",
		Upstream: "/bootstrap-static/",
	},
	{
		Name:     "league-standings",
		Path:     "/api/league-standings",
		Upstream: "/leagues-classic/{league_id}/standings/",
	},
	{
		Name:     "live-data",
		Path:     "/api/live-data/{event_id}",
		Upstream: "/event/{event_id}/live/",
		Params:   []string{"event_id"},
	},
	{
		Name:     "manager-history",
		Path:     "/api/manager-history/{manager_id}",
		Upstream: "/entry/{manager_id}/history/",
		Params:   []string{"manager_id"},
	},
	{
		Name:     "manager-picks",
		Path:     "/api/manager-picks/{manager_id}/{event_id}",
		Upstream: "/entry/{manager_id}/event/{event_id}/picks/",
		Params:   []string{"manager_id", "event_id"},
	},
	{
		Name:     "manager-transfers",
		Path:     "/api/manager-transfers/{manager_id}",
		Upstream: "/entry/{manager_id}/transfers/",
		Params:   []string{"manager_id"},
	},
}

func placeholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Validate checks that Params matches the placeholders of Path and that every
// upstream placeholder is either a path parameter or one of fixed.
func (rt Route) Validate(fixed map[string]string) error {
	if rt.Name == "" {
		return fmt.Errorf("route %q: name is required", rt.Path)
	}
	if !strings.HasPrefix(rt.Path, "/") || !strings.HasPrefix(rt.Upstream, "/") {
		return fmt.Errorf("route %s: paths must start with /", rt.Name)
	}

	declared := placeholders(rt.Path)
	if !slices.Equal(declared, rt.Params) {
		return fmt.Errorf("route %s: parameters %v do not match path template %s", rt.Name, rt.Params, rt.Path)
	}

	for _, name := range placeholders(rt.Upstream) {
		if slices.Contains(rt.Params, name) {
			continue
		}
		if _, ok := fixed[name]; ok {
			continue
		}
		return fmt.Errorf("route %s: upstream placeholder {%s} has no value", rt.Name, name)
	}

	return nil
}

// Pattern is the router pattern for Path, with every parameter restricted
// to decimal digits.
func (rt Route) Pattern() string {
	return placeholderRe.ReplaceAllString(rt.Path, "{${1}:[0-9]+}")
}

// UpstreamPath substitutes values into the upstream template.
func (rt Route) UpstreamPath(values map[string]string) (string, error) {
	var missing string
	path := placeholderRe.ReplaceAllStringFunc(rt.Upstream, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := values[name]
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("route %s: no value for {%s}", rt.Name, missing)
	}
	return path, nil
}
