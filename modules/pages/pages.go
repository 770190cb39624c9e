// Package pages holds the components that make up the site.
package pages

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gogofolio/modules/history"
	"gogofolio/modules/logger"
	"gogofolio/modules/posts"
	"gogofolio/modules/router"
	"gogofolio/modules/templates"
	"gogofolio/modules/view"
)

//go:embed templates/*.html
var embedded embed.FS

const (
	homePath = "/"
	blogPath = "blog/*"
)

// Tags that always get a list on the blog index, in this order.
var pinnedTags = []string{"lifestyle", "technical"}

// PostSource is where the blog reads its posts from. An error matching
// posts.ErrBrokenPost comes with the posts that could be read.
type PostSource interface {
	List() ([]*posts.Post, error)
}

type Config struct {
	Posts  PostSource
	Author string

	// Templates overrides the embedded templates, e.g. with os.DirFS while
	// developing.
	Templates  fs.FS
	Production bool

	Logger logger.Logger
}

// Site renders the pages of the website.
type Site struct {
	posts  PostSource
	author string
	engine *templates.TemplateEngine
	log    logger.Logger
}

func New(cfg Config) *Site {
	fsys := cfg.Templates
	if fsys == nil {
		fsys, _ = fs.Sub(embedded, "templates")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Site{
		posts:  cfg.Posts,
		author: cfg.Author,
		engine: templates.New(fsys, nil, cfg.Production),
		log:    log.Named("pages"),
	}
}

// Render renders the app at the provider's location.
func (s *Site) Render(provider history.Provider) (view.Result, error) {
	return view.Render(provider, s.App(), nil)
}

// RenderURL renders the app for a request URI.
func (s *Site) RenderURL(uri string) (view.Result, error) {
	return s.Render(history.New(history.NewMemorySource(uri)))
}

// Document wraps a render result in the page shell.
func (s *Site) Document(res view.Result) (template.HTML, error) {
	return s.engine.Render("document.html", struct {
		Head template.HTML
		CSS  template.CSS
		HTML template.HTML
	}{res.Head, template.CSS(res.CSS), res.HTML})
}

// App is the top-level component: navigation plus the home and blog routes.
func (s *Site) App() view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, props view.Props) (template.HTML, error) {
		ctx.AddCSS(appCSS)

		r := ctx.NewRouter("/")
		home := r.Register(homePath, s.Home())
		blog := r.Register(blogPath, s.Blog())

		return ctx.Within(r, func() (template.HTML, error) {
			nav, err := s.Nav().Render(ctx, nil)
			if err != nil {
				return "", err
			}
			homePage, err := home.Render(ctx, nil)
			if err != nil {
				return "", err
			}
			blogPage, err := blog.Render(ctx, nil)
			if err != nil {
				return "", err
			}

			return s.engine.Render("app.html", struct {
				Nav  template.HTML
				Page template.HTML
			}{nav, view.Join(homePage, blogPage)})
		})
	})
}

func (s *Site) Nav() view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, _ view.Props) (template.HTML, error) {
		ctx.AddCSS(navCSS)
		ctx.AddCSS(navLinkCSS)

		links := []view.Link{
			view.NavLink("blog", view.Static("Writings")),
			view.NavLink("/", view.Static("Home")),
		}
		rendered := make([]template.HTML, 0, len(links))
		for _, l := range links {
			html, err := l.Render(ctx, nil)
			if err != nil {
				return "", err
			}
			rendered = append(rendered, html)
		}
		return s.engine.Render("nav.html", rendered)
	})
}

func (s *Site) Home() view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, _ view.Props) (template.HTML, error) {
		ctx.AddCSS(homeCSS)
		return s.engine.Render("home.html", nil)
	})
}

// Blog is a nested router: the index, one route per post and a not found
// fallback.
func (s *Site) Blog() view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, _ view.Props) (template.HTML, error) {
		ctx.AddCSS(blogCSS)
		ctx.SetTitle("Writings | " + s.author)

		list, err := s.listPosts()
		if err != nil {
			return "", err
		}

		r := ctx.NewRouter("/")
		routes := s.registerBlog(r, list)

		page, err := ctx.Within(r, func() (template.HTML, error) {
			parts := make([]template.HTML, 0, len(routes))
			for _, rt := range routes {
				html, err := rt.Render(ctx, nil)
				if err != nil {
					return "", err
				}
				parts = append(parts, html)
			}
			return view.Join(parts...), nil
		})
		if err != nil {
			return "", err
		}
		return s.engine.Render("blog.html", page)
	})
}

// listPosts lists the readable posts. Broken posts are logged and skipped so
// one bad file does not take the blog down.
func (s *Site) listPosts() ([]*posts.Post, error) {
	list, err := s.posts.List()
	if err != nil {
		if !errors.Is(err, posts.ErrBrokenPost) {
			return nil, err
		}
		s.log.Warn("skipping broken posts", logger.Err(err))
	}
	return list, nil
}

func (s *Site) registerBlog(r *view.Router, list []*posts.Post) []*view.Route {
	routes := []*view.Route{r.Register("/", s.blogIndex(list))}
	for _, p := range list {
		routes = append(routes, r.Register(p.Slug, s.post(p)))
	}
	return append(routes, r.Register("", s.notFound()))
}

// RouteTable is the set of routes one router of the site picks from.
type RouteTable struct {
	Name   string
	Routes []*router.Route
}

// RouteTables lists the routes of the app router and of the blog router
// nested under it, with their patterns combined the way rendering does.
func (s *Site) RouteTables() ([]RouteTable, error) {
	list, err := s.listPosts()
	if err != nil {
		return nil, err
	}

	app := view.NewRouter(history.New(history.NewMemorySource("/blog")), "/")
	app.Register(homePath, s.Home())
	app.Register(blogPath, s.Blog())

	blog := app.Nest()
	s.registerBlog(blog, list)

	return []RouteTable{
		{Name: "app", Routes: app.Routes()},
		{Name: "blog", Routes: blog.Routes()},
	}, nil
}

type postGroup struct {
	Title string
	Posts []*posts.Post
}

// groupPosts puts posts under the pinned tags first, then every other tag in
// name order. A post with several tags shows up in each of them.
func groupPosts(list []*posts.Post) []postGroup {
	byTag := make(map[string][]*posts.Post)
	for _, p := range list {
		for _, tag := range p.Tags {
			tag = strings.ToLower(tag)
			byTag[tag] = append(byTag[tag], p)
		}
	}

	var others []string
	for tag := range byTag {
		if !isPinned(tag) {
			others = append(others, tag)
		}
	}
	sort.Strings(others)

	groups := make([]postGroup, 0, len(pinnedTags)+len(others))
	for _, tag := range append(append([]string(nil), pinnedTags...), others...) {
		groups = append(groups, postGroup{Title: cases.Title(language.English).String(tag), Posts: byTag[tag]})
	}
	return groups
}

func isPinned(tag string) bool {
	for _, t := range pinnedTags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *Site) blogIndex(list []*posts.Post) view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, _ view.Props) (template.HTML, error) {
		ctx.AddCSS(listCSS)

		type section struct {
			Title string
			Links []template.HTML
		}
		var sections []section
		for _, g := range groupPosts(list) {
			sec := section{Title: g.Title}
			for _, p := range g.Posts {
				html, err := view.Link{To: p.Slug, Children: view.Static(template.HTMLEscapeString(p.Title))}.Render(ctx, nil)
				if err != nil {
					return "", err
				}
				sec.Links = append(sec.Links, html)
			}
			sections = append(sections, sec)
		}
		return s.engine.Render("blog_index.html", sections)
	})
}

func (s *Site) post(p *posts.Post) view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, _ view.Props) (template.HTML, error) {
		ctx.SetTitle(p.Title + " | " + s.author)
		return s.engine.Render("post.html", p)
	})
}

func (s *Site) notFound() view.Renderable {
	return view.RenderFunc(func(ctx *view.Context, props view.Props) (template.HTML, error) {
		loc, _ := props["location"].(history.Location)
		return s.engine.Render("not_found.html", loc.Pathname)
	})
}
