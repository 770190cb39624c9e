package router

import (
	"errors"
	"sync"
)

var ErrMultipleDefaults = errors.New("router: more than one default route registered")

// Table is an ordered set of routes. Registration order is the tie-break
// used when ranking.
type Table struct {
	rwMutex sync.RWMutex
	routes  []*Route
}

func NewTable(routes ...*Route) *Table {
	t := &Table{routes: make([]*Route, 0, len(routes))}
	t.routes = append(t.routes, routes...)
	return t
}

// Register appends a route and returns it.
func (t *Table) Register(route *Route) *Route {
	t.rwMutex.Lock()
	t.routes = append(t.routes, route)
	t.rwMutex.Unlock()
	return route
}

// Unregister removes route by identity. It reports whether it was found.
func (t *Table) Unregister(route *Route) bool {
	t.rwMutex.Lock()
	defer t.rwMutex.Unlock()

	for i, r := range t.routes {
		if r == route {
			t.routes = append(t.routes[:i], t.routes[i+1:]...)
			return true
		}
	}
	return false
}

// Routes returns a copy of the registered routes in registration order.
func (t *Table) Routes() []*Route {
	t.rwMutex.RLock()
	defer t.rwMutex.RUnlock()

	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

func (t *Table) Len() int {
	t.rwMutex.RLock()
	defer t.rwMutex.RUnlock()
	return len(t.routes)
}

func (t *Table) Ranked() []RankedRoute {
	return Rank(t.Routes())
}

func (t *Table) Pick(uri string) *Match {
	return Pick(t.Routes(), uri)
}

// Validate rejects a table holding more than one default route. Pick itself
// tolerates it and keeps the first default in ranked order.
func (t *Table) Validate() error {
	t.rwMutex.RLock()
	defer t.rwMutex.RUnlock()

	defaults := 0
	for _, r := range t.routes {
		if r.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return ErrMultipleDefaults
	}
	return nil
}
