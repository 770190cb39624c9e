package router

import "sort"

const (
	segmentPoints = 4
	staticPoints  = 3
	dynamicPoints = 2
	splatPenalty  = 1
	rootPoints    = 1
)

// Route is a registered path pattern. Default routes match only when no
// other route does.
type Route struct {
	Path    string
	Default bool
}

// RankedRoute pairs a route with its specificity score and its position in
// the registration order.
type RankedRoute struct {
	Route *Route
	Score int
	Index int
}

// Score returns the specificity of a route: static > dynamic > splat > root,
// with every segment adding a base amount so longer patterns win.
func Score(route *Route) int {
	if route.Default {
		return 0
	}

	score := 0
	for _, segment := range Segmentize(route.Path) {
		score += segmentPoints

		switch kind, _ := Classify(segment); kind {
		case Root:
			score += rootPoints
		case Dynamic:
			score += dynamicPoints
		case Splat:
			score -= segmentPoints + splatPenalty
		default:
			score += staticPoints
		}
	}
	return score
}

// Rank scores every route and orders them by descending score. Equal scores
// keep registration order.
func Rank(routes []*Route) []RankedRoute {
	ranked := make([]RankedRoute, len(routes))
	for i, route := range routes {
		ranked[i] = RankedRoute{Route: route, Score: Score(route), Index: i}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})
	return ranked
}
