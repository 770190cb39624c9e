package benchmarks

import (
	"fmt"
	"testing"

	"gogofolio/modules/router"
)

func blogRoutes(n int) []*router.Route {
	routes := []*router.Route{
		{Path: "/"},
		{Path: "blog/*/"},
		{Path: "blog/", Default: true},
		{Path: "users/:id/posts/:post/"},
	}
	for i := 0; i < n; i++ {
		routes = append(routes, &router.Route{Path: fmt.Sprintf("blog/post-%d/", i)})
	}
	return routes
}

func BenchmarkPick(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		routes := blogRoutes(n)
		uris := []string{
			"/",
			fmt.Sprintf("/blog/post-%d", n-1),
			"/users/42/posts/hello%20world",
			"/nowhere/at/all?q=1",
		}
		b.Run(fmt.Sprintf("routes=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				router.Pick(routes, uris[i%len(uris)])
			}
		})
	}
}

func BenchmarkRank(b *testing.B) {
	routes := blogRoutes(500)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.Rank(routes)
	}
}

func BenchmarkResolve(b *testing.B) {
	cases := [][2]string{
		{"post-1", "/blog"},
		{"../", "/blog/post-1"},
		{"/about?x=1", "/blog"},
		{"../../a/b", "/x/y/z"},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := cases[i%len(cases)]
		router.Resolve(c[0], c[1])
	}
}
