package hubs

import "strings"

const DefaultMaxHubs = 3

// Router picks connection hubs for a route. It holds no mutable state.
type Router struct {
	table   *Table
	maxHubs int
}

func NewRouter(table *Table, maxHubs int) *Router {
	if maxHubs <= 0 {
		maxHubs = DefaultMaxHubs
	}
	return &Router{table: table, maxHubs: maxHubs}
}

// SelectHubs returns up to maxHubs candidate hubs, never including either
// endpoint. The result is never empty.
func (r *Router) SelectHubs(origin, destination string) []string {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))

	candidates := r.candidates(origin, destination)
	hubs := r.pick(candidates, origin, destination)
	if len(hubs) == 0 {
		hubs = r.pick(r.table.defaultHubs, origin, destination)
	}
	if len(hubs) == 0 {
		hubs = r.pick(r.table.unknownHubs, origin, destination)
	}
	return hubs
}

// MatchedRule reports which rule drives a route, or "" for a fallback list.
func (r *Router) MatchedRule(origin, destination string) string {
	o, okO := r.table.Hub(origin)
	d, okD := r.table.Hub(destination)
	if !okO || !okD {
		return ""
	}
	for _, rule := range r.table.rules {
		if rule.matches(o.Region, d.Region) {
			return rule.Name
		}
	}
	return ""
}

func (r *Router) candidates(origin, destination string) []string {
	o, okO := r.table.Hub(origin)
	d, okD := r.table.Hub(destination)
	if !okO || !okD {
		return r.table.unknownHubs
	}
	for _, rule := range r.table.rules {
		if rule.matches(o.Region, d.Region) {
			return rule.Hubs
		}
	}
	return r.table.defaultHubs
}

func (r *Router) pick(candidates []string, origin, destination string) []string {
	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, r.maxHubs)
	for _, code := range candidates {
		if code == origin || code == destination || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
		if len(out) == r.maxHubs {
			break
		}
	}
	return out
}
