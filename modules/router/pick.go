package router

import "strings"

// Match is the result of picking a route for a uri.
type Match struct {
	Route  *Route
	Params map[string]string
	URI    string
}

// Pick ranks routes and returns the best match for uri, the first default
// route if nothing else matches, or nil.
//
// Dynamic segments never bind against the root uri, so "/:id" does not
// match "/".
func Pick(routes []*Route, uri string) *Match {
	var fallback *Match

	pathname, _, _ := strings.Cut(uri, "?")
	uriSegments := Segmentize(pathname)
	isRootURI := uriSegments[0] == ""

	for _, ranked := range Rank(routes) {
		route := ranked.Route

		if route.Default {
			if fallback == nil {
				fallback = &Match{Route: route, Params: map[string]string{}, URI: uri}
			}
			continue
		}

		if m, ok := matchSegments(route, uriSegments, isRootURI); ok {
			return m
		}
	}

	return fallback
}

// MatchRoute checks a single route against uri.
func MatchRoute(route *Route, uri string) *Match {
	return Pick([]*Route{route}, uri)
}

func matchSegments(route *Route, uriSegments []string, isRootURI bool) (*Match, bool) {
	routeSegments := Segmentize(route.Path)
	params := make(map[string]string)

	n := max(len(uriSegments), len(routeSegments))
	index := 0

	for ; index < n; index++ {
		if index >= len(routeSegments) {
			// route: /users  uri: /users/123
			return nil, false
		}
		routeSegment := routeSegments[index]
		kind, name := Classify(routeSegment)

		if kind == Splat {
			// route: /files/*  uri: /files/documents/work
			rest := make([]string, 0, len(uriSegments)-index)
			for _, s := range uriSegments[min(index, len(uriSegments)):] {
				rest = append(rest, decodeSegment(s))
			}
			params[name] = strings.Join(rest, "/")
			break
		}

		if index >= len(uriSegments) {
			// route: /users/:id  uri: /users
			return nil, false
		}
		uriSegment := uriSegments[index]

		switch {
		case kind == Dynamic && !isRootURI:
			params[name] = decodeSegment(uriSegment)
		case routeSegment != uriSegment:
			return nil, false
		}
	}

	return &Match{
		Route:  route,
		Params: params,
		URI:    "/" + strings.Join(uriSegments[:min(index, len(uriSegments))], "/"),
	}, true
}
