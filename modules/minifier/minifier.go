// Package minifier shrinks HTML, CSS and JavaScript.
package minifier

import (
	"fmt"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const (
	HTML = "text/html"
	CSS  = "text/css"
	JS   = "text/javascript"
)

var jsTypes = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

// Minifier is safe for concurrent use.
type Minifier struct {
	m *minify.M
}

func New() *Minifier {
	m := minify.New()
	m.AddFunc(CSS, css.Minify)
	m.AddFunc(HTML, html.Minify)
	m.AddFuncRegexp(jsTypes, js.Minify)
	return &Minifier{m: m}
}

func (m *Minifier) Bytes(mediatype string, content []byte) ([]byte, error) {
	out, err := m.m.Bytes(mediatype, content)
	if err != nil {
		return nil, fmt.Errorf("minify %s: %w", mediatype, err)
	}
	return out, nil
}

// MediaType maps a file extension to the media type the minifier handles,
// or "" when it does not handle it.
func MediaType(ext string) string {
	switch ext {
	case ".html", ".htm":
		return HTML
	case ".css":
		return CSS
	case ".js", ".mjs":
		return JS
	default:
		return ""
	}
}
