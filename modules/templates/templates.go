package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
)

// TemplateEngine parses html/template files from a file system. In
// production parsed templates are kept; otherwise every lookup reparses so
// edits show up without a restart.
type TemplateEngine struct {
	templates   sync.Map
	fsys        fs.FS
	funcs       template.FuncMap
	GetTemplate func(string) (*template.Template, error)
}

func New(fsys fs.FS, funcs template.FuncMap, productionMode bool) *TemplateEngine {
	t := &TemplateEngine{
		fsys:  fsys,
		funcs: funcs,
	}

	if productionMode {
		t.GetTemplate = t.getProduction
	} else {
		t.GetTemplate = t.parse
	}

	return t
}

func (t *TemplateEngine) getProduction(name string) (*template.Template, error) {
	if tmpl, ok := t.templates.Load(name); ok {
		return tmpl.(*template.Template), nil
	}

	tmpl, err := t.parse(name)
	if err != nil {
		return nil, err
	}

	actual, _ := t.templates.LoadOrStore(name, tmpl)
	return actual.(*template.Template), nil
}

func (t *TemplateEngine) parse(name string) (*template.Template, error) {
	content, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("error reading template file: %w", err)
	}

	tmpl, err := template.New(path.Base(name)).Funcs(t.funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("error parsing template %s: %w", name, err)
	}
	return tmpl, nil
}

// Render executes the named template with data.
func (t *TemplateEngine) Render(name string, data any) (template.HTML, error) {
	tmpl, err := t.GetTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
