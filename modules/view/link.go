package view

import (
	"errors"
	"html/template"
	"sort"
	"strings"

	"gogofolio/modules/history"
)

var ErrNoRouter = errors.New("link rendered outside a router")

// LinkState is what a link knows about itself when computing extra props.
type LinkState struct {
	Location           history.Location
	Href               string
	IsPartiallyCurrent bool
	IsCurrent          bool
}

// GetProps returns extra attributes for a link's anchor.
type GetProps func(LinkState) map[string]string

// Link is an anchor whose target resolves against the enclosing router.
type Link struct {
	To       string
	Replace  bool
	State    map[string]any
	GetProps GetProps
	Children Renderable
}

// Resolve computes the link's state from the enclosing router.
func (l Link) Resolve(ctx *Context) (LinkState, error) {
	r := ctx.Router()
	if r == nil {
		return LinkState{}, ErrNoRouter
	}

	to := l.To
	if to == "" {
		to = "#"
	}
	href := r.Href(to)
	loc := r.Location()

	return LinkState{
		Location:           loc,
		Href:               href,
		IsPartiallyCurrent: strings.HasPrefix(loc.Pathname, href),
		IsCurrent:          href == loc.Pathname,
	}, nil
}

func (l Link) Render(ctx *Context, props Props) (template.HTML, error) {
	state, err := l.Resolve(ctx)
	if err != nil {
		return "", err
	}

	attrs := map[string]string{"href": state.Href}
	if state.IsCurrent {
		attrs["aria-current"] = "page"
	}
	if l.GetProps != nil {
		for k, v := range l.GetProps(state) {
			attrs[k] = v
		}
	}

	var children template.HTML
	if l.Children != nil {
		if children, err = l.Children.Render(ctx, props); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	b.WriteString("<a")
	writeAttrs(&b, attrs)
	b.WriteString(">")
	b.WriteString(string(children))
	b.WriteString("</a>")
	return template.HTML(b.String()), nil
}

// Follow navigates to the link's target as a click would.
func (l Link) Follow(ctx *Context) error {
	state, err := l.Resolve(ctx)
	if err != nil {
		return err
	}
	return ctx.Provider.Navigate(state.Href, history.NavigateOptions{State: l.State, Replace: l.Replace})
}

// NavLink is a Link marked active while its target is current. The root link
// is only active on an exact match.
func NavLink(to string, children Renderable) Link {
	return Link{
		To:       to,
		Children: children,
		GetProps: func(s LinkState) map[string]string {
			active := s.IsCurrent
			if s.Href != "/" {
				active = s.IsPartiallyCurrent || s.IsCurrent
			}
			if active {
				return map[string]string{"class": "active"}
			}
			return nil
		},
	}
}

// href first, then the rest in name order.
func writeAttrs(b *strings.Builder, attrs map[string]string) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if name != "href" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{"href"}, names...)

	for _, name := range names {
		b.WriteString(" ")
		b.WriteString(template.HTMLEscapeString(name))
		b.WriteString(`="`)
		b.WriteString(template.HTMLEscapeString(attrs[name]))
		b.WriteString(`"`)
	}
}
