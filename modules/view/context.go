// Package view renders routed components to HTML on the server.
package view

import (
	"html/template"
	"strings"

	"gogofolio/modules/history"
)

// Props are the inputs a component is rendered with.
type Props map[string]any

// String returns props[key] when it holds a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Renderable is anything that can be rendered into a page.
type Renderable interface {
	Render(ctx *Context, props Props) (template.HTML, error)
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(ctx *Context, props Props) (template.HTML, error)

func (f RenderFunc) Render(ctx *Context, props Props) (template.HTML, error) {
	return f(ctx, props)
}

// Static renders fixed markup.
type Static template.HTML

func (s Static) Render(*Context, Props) (template.HTML, error) {
	return template.HTML(s), nil
}

// Result is the outcome of rendering a component tree.
type Result struct {
	HTML template.HTML
	Head template.HTML
	CSS  string
}

// Context carries per-render state: the history provider, the router that
// encloses the component being rendered, and the head and styles collected
// along the way.
type Context struct {
	Provider history.Provider

	router *Router
	title  string
	head   strings.Builder
	css    []string
	seen   map[string]struct{}
}

func NewContext(provider history.Provider) *Context {
	return &Context{
		Provider: provider,
		seen:     make(map[string]struct{}),
	}
}

// Router returns the router enclosing the component being rendered, or nil
// at the top level.
func (c *Context) Router() *Router {
	return c.router
}

// Within renders fn with r as the enclosing router.
func (c *Context) Within(r *Router, fn func() (template.HTML, error)) (template.HTML, error) {
	prev := c.router
	c.router = r
	defer func() { c.router = prev }()
	return fn()
}

// NewRouter returns a router for a component: a child of the enclosing router
// when there is one, a top-level router at basepath otherwise.
func (c *Context) NewRouter(basepath string) *Router {
	if c.router != nil {
		return c.router.Nest()
	}
	return NewRouter(c.Provider, basepath)
}

// SetTitle sets the document title. The last call wins.
func (c *Context) SetTitle(title string) {
	c.title = title
}

func (c *Context) Title() string {
	return c.title
}

// AddHead appends markup to the document head.
func (c *Context) AddHead(markup template.HTML) {
	c.head.WriteString(string(markup))
}

// AddCSS records a stylesheet once, in first-use order.
func (c *Context) AddCSS(css string) {
	if _, ok := c.seen[css]; ok {
		return
	}
	c.seen[css] = struct{}{}
	c.css = append(c.css, css)
}

func (c *Context) result(html template.HTML) Result {
	var head strings.Builder
	if c.title != "" {
		head.WriteString("<title>")
		head.WriteString(template.HTMLEscapeString(c.title))
		head.WriteString("</title>")
	}
	head.WriteString(c.head.String())

	return Result{
		HTML: html,
		Head: template.HTML(head.String()),
		CSS:  strings.Join(c.css, "\n"),
	}
}

// Render renders component against the location held by provider.
func Render(provider history.Provider, component Renderable, props Props) (Result, error) {
	ctx := NewContext(provider)
	html, err := component.Render(ctx, props)
	if err != nil {
		return Result{}, err
	}
	return ctx.result(html), nil
}

// Join concatenates rendered fragments.
func Join(parts ...template.HTML) template.HTML {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return template.HTML(b.String())
}
