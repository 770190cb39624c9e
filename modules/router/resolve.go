package router

import "strings"

// Resolve resolves to against base as though every path were a directory:
//
//	Resolve("profile", "/users/789") => /users/789/profile
//	Resolve("../..", "/users/123")   => /
//	Resolve("?a=b", "/users?b=c")    => /users?a=b
//
// Unlike browser URL resolution, "foo" resolves the same way from "/bar"
// and "/bar/".
func Resolve(to, base string) string {
	if strings.HasPrefix(to, "/") {
		return to
	}

	toPathname, toQuery := splitQuery(to)
	basePathname, _ := splitQuery(base)
	toSegments := Segmentize(toPathname)
	baseSegments := Segmentize(basePathname)

	if toSegments[0] == "" {
		return AddQuery(basePathname, toQuery)
	}

	if !strings.HasPrefix(toSegments[0], ".") {
		pathname := strings.Join(append(baseSegments, toSegments...), "/")
		if basePathname != "/" {
			pathname = "/" + pathname
		}
		return AddQuery(pathname, toQuery)
	}

	all := append(baseSegments, toSegments...)
	segments := make([]string, 0, len(all))
	for _, segment := range all {
		switch segment {
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		case ".":
		default:
			segments = append(segments, segment)
		}
	}

	return AddQuery("/"+strings.Join(segments, "/"), toQuery)
}

// splitQuery separates the pathname from the query. Only the text between the
// first and second "?" is kept as the query.
func splitQuery(uri string) (pathname, query string) {
	parts := strings.SplitN(uri, "?", 3)
	if len(parts) > 1 {
		query = parts[1]
	}
	return parts[0], query
}

// AddQuery appends "?query" to pathname when query is not empty.
func AddQuery(pathname, query string) string {
	if query == "" {
		return pathname
	}
	return pathname + "?" + query
}

// CombinePaths joins a nested router's base path with a child route path.
// The result has no leading slash and exactly one trailing slash.
func CombinePaths(basepath, path string) string {
	joined := basepath
	if path != "/" {
		joined = StripSlashes(basepath) + "/" + StripSlashes(path)
	}
	return StripSlashes(joined) + "/"
}
