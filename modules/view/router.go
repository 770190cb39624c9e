package view

import (
	"html/template"
	"regexp"
	"sync"

	"gogofolio/modules/history"
	"gogofolio/modules/router"
	"gogofolio/modules/store"
)

// Base is the path prefix and matched URI that nested routes and links
// resolve against.
type Base struct {
	Path string
	URI  string
}

var splatSuffix = regexp.MustCompile(`\*.*$`)

// Router owns a set of routes and tracks which one matches the current
// location.
type Router struct {
	provider history.Provider
	location store.Readable[history.Location]

	baseStore store.Readable[Base]
	table     *router.Table
	routes    *store.Writable[[]*router.Route]
	active    store.Readable[*router.Match]

	mu         sync.Mutex
	components map[*router.Route]Renderable
}

// NewRouter returns a top-level router rooted at basepath.
func NewRouter(provider history.Provider, basepath string) *Router {
	if basepath == "" {
		basepath = "/"
	}
	location := store.NewReadable(provider.Location(), func(set func(history.Location)) func() {
		return provider.Listen(func(e history.Event) { set(e.Location) })
	})
	base := store.NewReadable(Base{Path: basepath, URI: basepath}, nil)
	return newRouter(provider, location, base)
}

func newRouter(provider history.Provider, location store.Readable[history.Location], base store.Readable[Base]) *Router {
	r := &Router{
		provider:   provider,
		location:   location,
		baseStore:  base,
		table:      router.NewTable(),
		routes:     store.NewWritable[[]*router.Route](nil, nil),
		components: make(map[*router.Route]Renderable),
	}
	r.active = store.Derived2(r.routes, location, func(routes []*router.Route, loc history.Location) *router.Match {
		return router.Pick(routes, loc.Pathname)
	})
	return r
}

// Nest returns a child router whose base follows this router's active route.
func (r *Router) Nest() *Router {
	base := store.Derived2(r.baseStore, r.active, func(b Base, m *router.Match) Base {
		if m == nil {
			return b
		}
		path := b.Path
		if !m.Route.Default {
			path = splatSuffix.ReplaceAllString(m.Route.Path, "")
		}
		return Base{Path: path, URI: m.URI}
	})
	return newRouter(r.provider, r.location, base)
}

// Register adds a route for path below the router's base. An empty path
// registers the default route.
func (r *Router) Register(path string, component Renderable) *Route {
	b := store.Get(r.baseStore)
	route := &router.Route{
		Path:    router.CombinePaths(b.Path, path),
		Default: path == "",
	}

	r.mu.Lock()
	r.components[route] = component
	r.table.Register(route)
	r.mu.Unlock()

	r.routes.Set(r.table.Routes())
	return &Route{router: r, route: route}
}

// Unregister removes a route registered on r.
func (r *Router) Unregister(rt *Route) {
	r.mu.Lock()
	delete(r.components, rt.route)
	removed := r.table.Unregister(rt.route)
	r.mu.Unlock()

	if removed {
		r.routes.Set(r.table.Routes())
	}
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*router.Route {
	return r.table.Routes()
}

// Len is the number of registered routes.
func (r *Router) Len() int {
	return r.table.Len()
}

// Active returns the current match, or nil.
func (r *Router) Active() *router.Match {
	return store.Get(r.active)
}

func (r *Router) ActiveStore() store.Readable[*router.Match] {
	return r.active
}

func (r *Router) Base() Base {
	return store.Get(r.baseStore)
}

func (r *Router) Location() history.Location {
	return store.Get(r.location)
}

func (r *Router) LocationStore() store.Readable[history.Location] {
	return r.location
}

// Navigate resolves to against the router's base and moves the history there.
func (r *Router) Navigate(to string, opts history.NavigateOptions) error {
	return r.provider.Navigate(r.Href(to), opts)
}

// Href is the link target for to as seen from this router.
func (r *Router) Href(to string) string {
	b := r.Base()
	if to == "/" {
		return b.URI
	}
	return router.Resolve(to, b.URI)
}

// Route is a registered route together with the component it renders.
type Route struct {
	router *Router
	route  *router.Route
}

func (rt *Route) Pattern() *router.Route {
	return rt.route
}

// IsActive reports whether the route is the router's current match.
func (rt *Route) IsActive() bool {
	m := rt.router.Active()
	return m != nil && m.Route == rt.route
}

// Render renders the route's component when it is active and nothing
// otherwise. The component receives the location, the matched params and
// props.
func (rt *Route) Render(ctx *Context, props Props) (template.HTML, error) {
	m := rt.router.Active()
	if m == nil || m.Route != rt.route {
		return "", nil
	}

	rt.router.mu.Lock()
	component := rt.router.components[rt.route]
	rt.router.mu.Unlock()
	if component == nil {
		return "", nil
	}

	merged := Props{"location": rt.router.Location()}
	for k, v := range m.Params {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}

	return ctx.Within(rt.router, func() (template.HTML, error) {
		return component.Render(ctx, merged)
	})
}
