package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routes(paths ...string) []*Route {
	out := make([]*Route, len(paths))
	for i, p := range paths {
		out[i] = &Route{Path: p, Default: p == ""}
	}
	return out
}

func TestSegmentize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uri  string
		want []string
	}{
		{"", []string{""}},
		{"/", []string{""}},
		{"//", []string{""}},
		{"/users", []string{"users"}},
		{"users/", []string{"users"}},
		{"///users/123///", []string{"users", "123"}},
		{"a/b/c", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Segmentize(tt.uri), "Segmentize(%q)", tt.uri)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		segment  string
		wantKind SegmentKind
		wantName string
	}{
		{"", Root, ""},
		{":id", Dynamic, "id"},
		{":", Static, ""},
		{"*", Splat, SplatKey},
		{"*rest", Splat, "rest"},
		{"users", Static, ""},
		{"a:b", Static, ""},
	}

	for _, tt := range tests {
		kind, name := Classify(tt.segment)
		assert.Equal(t, tt.wantKind, kind, "kind of %q", tt.segment)
		assert.Equal(t, tt.wantName, name, "name of %q", tt.segment)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		route Route
		want  int
	}{
		{Route{Path: "/"}, 5},
		{Route{Path: "/users"}, 7},
		{Route{Path: "/users/:id"}, 13},
		{Route{Path: "/users/*"}, 6},
		{Route{Path: "*"}, -1},
		{Route{Path: "/blog/lifestyle"}, 14},
		{Route{Path: "/anything", Default: true}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(&tt.route), "Score(%q)", tt.route.Path)
	}
}

func TestScoreSpecificityOrder(t *testing.T) {
	t.Parallel()

	static := Score(&Route{Path: "/files/docs"})
	dynamic := Score(&Route{Path: "/files/:id"})
	splat := Score(&Route{Path: "/files/*"})

	assert.Greater(t, static, dynamic)
	assert.Greater(t, dynamic, splat)
}

func TestRank(t *testing.T) {
	t.Parallel()

	ranked := Rank(routes("/", "/blog/:slug", "/blog/*"))
	require.Len(t, ranked, 3)

	assert.Equal(t, "/blog/:slug", ranked[0].Route.Path)
	assert.Equal(t, "/blog/*", ranked[1].Route.Path)
	assert.Equal(t, "/", ranked[2].Route.Path)
	assert.Equal(t, 1, ranked[0].Index)
}

func TestRankTieBreaksOnRegistrationOrder(t *testing.T) {
	t.Parallel()

	ranked := Rank(routes("/a/:x", "/b/:y", "/c/:z"))
	require.Len(t, ranked, 3)

	for i, r := range ranked {
		assert.Equal(t, i, r.Index)
	}
}

func TestPick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		routes     []string
		uri        string
		wantPath   string
		wantParams map[string]string
		wantURI    string
		wantNil    bool
	}{
		{
			name:       "splat captures remainder",
			routes:     []string{"/", "/blog/*"},
			uri:        "/blog/lifestyle-post-1",
			wantPath:   "/blog/*",
			wantParams: map[string]string{"*": "lifestyle-post-1"},
			wantURI:    "/blog",
		},
		{
			name:       "named splat",
			routes:     []string{"/files/*path"},
			uri:        "/files/documents/work",
			wantPath:   "/files/*path",
			wantParams: map[string]string{"path": "documents/work"},
			wantURI:    "/files",
		},
		{
			name:       "splat with nothing left",
			routes:     []string{"/files/*"},
			uri:        "/files",
			wantPath:   "/files/*",
			wantParams: map[string]string{"*": ""},
			wantURI:    "/files",
		},
		{
			name:       "dynamic binds",
			routes:     []string{"/users/:id"},
			uri:        "/users/42",
			wantPath:   "/users/:id",
			wantParams: map[string]string{"id": "42"},
			wantURI:    "/users/42",
		},
		{
			name:       "dynamic value is decoded",
			routes:     []string{"/tags/:tag"},
			uri:        "/tags/hello%20world",
			wantPath:   "/tags/:tag",
			wantParams: map[string]string{"tag": "hello world"},
			wantURI:    "/tags/hello%20world",
		},
		{
			name:    "uri shorter than route",
			routes:  []string{"/users/:id"},
			uri:     "/users",
			wantNil: true,
		},
		{
			name:    "route shorter than uri",
			routes:  []string{"/users"},
			uri:     "/users/123",
			wantNil: true,
		},
		{
			name:    "literal mismatch",
			routes:  []string{"/users/:id/profile"},
			uri:     "/users/123/settings",
			wantNil: true,
		},
		{
			name:       "root",
			routes:     []string{"/", "/blog/*"},
			uri:        "/",
			wantPath:   "/",
			wantParams: map[string]string{},
			wantURI:    "/",
		},
		{
			name:    "dynamic does not match root",
			routes:  []string{"/:id"},
			uri:     "/",
			wantNil: true,
		},
		{
			name:       "query string ignored",
			routes:     []string{"/users/:id"},
			uri:        "/users/7?tab=posts",
			wantPath:   "/users/:id",
			wantParams: map[string]string{"id": "7"},
			wantURI:    "/users/7",
		},
		{
			name:       "static beats dynamic regardless of order",
			routes:     []string{"/users/:id", "/users/me"},
			uri:        "/users/me",
			wantPath:   "/users/me",
			wantParams: map[string]string{},
			wantURI:    "/users/me",
		},
		{
			name:       "default when nothing matches",
			routes:     []string{"", "/users"},
			uri:        "/nope?x=1",
			wantPath:   "",
			wantParams: map[string]string{},
			wantURI:    "/nope?x=1",
		},
		{
			name:       "default does not short circuit",
			routes:     []string{"", "/users"},
			uri:        "/users",
			wantPath:   "/users",
			wantParams: map[string]string{},
			wantURI:    "/users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := Pick(routes(tt.routes...), tt.uri)
			if tt.wantNil {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.wantPath, m.Route.Path)
			assert.Equal(t, tt.wantParams, m.Params)
			assert.Equal(t, tt.wantURI, m.URI)
		})
	}
}

func TestPickFirstDefaultWins(t *testing.T) {
	t.Parallel()

	first := &Route{Default: true}
	second := &Route{Default: true}

	m := Pick([]*Route{first, second}, "/missing")
	require.NotNil(t, m)
	assert.Same(t, first, m.Route)
}

func TestMatchRoute(t *testing.T) {
	t.Parallel()

	route := &Route{Path: "blog/*/"}
	m := MatchRoute(route, "/blog/technical-post-2")
	require.NotNil(t, m)
	assert.Same(t, route, m.Route)
	assert.Equal(t, "technical-post-2", m.Params[SplatKey])

	assert.Nil(t, MatchRoute(&Route{Path: "/about"}, "/blog"))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		to, base, want string
	}{
		{"/foo/bar", "/baz/qux", "/foo/bar"},
		{"profile", "/users/789", "/users/789/profile"},
		{"profile", "/users/789/", "/users/789/profile"},
		{"blog", "/", "/blog"},
		{"./", "/users/123", "/users/123"},
		{"../", "/users/123", "/users"},
		{"../..", "/users/123", "/"},
		{"../../one", "/a/b/c/d", "/a/b/one"},
		{".././one", "/a/b/c/d", "/a/b/c/one"},
		{"?a=b", "/users?b=c", "/users?a=b"},
		{"", "/users?b=c", "/users"},
		{"edit?mode=full", "/posts/1?x=y", "/posts/1/edit?mode=full"},
		{"../../../../..", "/a", "/"},
		{"a?b?c", "/x", "/x/a?b"},
		{"?q=1?z", "/x?y?w", "/x?q=1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.to, tt.base), "Resolve(%q, %q)", tt.to, tt.base)
	}
}

func TestCombinePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		basepath, path, want string
	}{
		{"/", "/", "/"},
		{"/", "blog/*", "blog/*/"},
		{"blog/", "/", "blog/"},
		{"blog/", "lifestyle-post-1", "blog/lifestyle-post-1/"},
		{"/admin", "/users/:id/", "admin/users/:id/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CombinePaths(tt.basepath, tt.path), "CombinePaths(%q, %q)", tt.basepath, tt.path)
	}
}

func TestTable(t *testing.T) {
	t.Parallel()

	table := NewTable()
	home := table.Register(&Route{Path: "/"})
	blog := table.Register(&Route{Path: "blog/*"})
	assert.Equal(t, 2, table.Len())

	m := table.Pick("/blog/x")
	require.NotNil(t, m)
	assert.Same(t, blog, m.Route)

	assert.True(t, table.Unregister(blog))
	assert.False(t, table.Unregister(blog))
	assert.Nil(t, table.Pick("/blog/x"))
	assert.Equal(t, []*Route{home}, table.Routes())
}

func TestTableValidate(t *testing.T) {
	t.Parallel()

	table := NewTable(&Route{Path: "/"}, &Route{Default: true})
	require.NoError(t, table.Validate())

	table.Register(&Route{Default: true})
	assert.ErrorIs(t, table.Validate(), ErrMultipleDefaults)
}
