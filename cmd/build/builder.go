package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"gogofolio/modules/logger"
	"gogofolio/modules/minifier"
)

const (
	jsEntry   = "main.js"
	jsBundle  = "bundle.js"
	cssBundle = "bundle.css"
)

// Output describes one written bundle.
type Output struct {
	Path     string
	Inputs   int
	Bytes    int
	Duration time.Duration
}

// Builder bundles the sources in srcDir into outDir: main.js and everything
// it imports into bundle.js, every stylesheet into bundle.css.
type Builder struct {
	srcDir   string
	outDir   string
	minifier *minifier.Minifier
	ignore   *ignorePatterns
	log      logger.Logger
}

func NewBuilder(srcDir, outDir string, log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		srcDir:   srcDir,
		outDir:   outDir,
		minifier: minifier.New(),
		ignore:   newIgnorePatterns(),
		log:      log.Named("build"),
	}
}

// Build writes both bundles. A bundle without inputs is skipped.
func (b *Builder) Build() ([]Output, error) {
	steps := []func() (*Output, error){b.bundleJS, b.bundleCSS}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		outputs []Output
		errs    []error
	)
	for _, step := range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := step()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			} else if out != nil {
				outputs = append(outputs, *out)
			}
		}()
	}
	wg.Wait()

	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Path < outputs[j].Path })
	return outputs, errors.Join(errs...)
}

func (b *Builder) bundleJS() (*Output, error) {
	start := time.Now()
	entry := filepath.Join(b.srcDir, jsEntry)
	if _, err := os.Stat(entry); errors.Is(err, fs.ErrNotExist) {
		b.log.Debug("no script entry", logger.String("entry", entry))
		return nil, nil
	}

	outPath := filepath.Join(b.outDir, jsBundle)
	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{entry},
		Outfile:           outPath,
		Bundle:            true,
		Format:            api.FormatIIFE,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Metafile:          true,
		Write:             false,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, m := range result.Errors {
			msgs[i] = m.Text
			if m.Location != nil {
				msgs[i] = fmt.Sprintf("%s:%d: %s", m.Location.File, m.Location.Line, m.Text)
			}
		}
		return nil, fmt.Errorf("bundling %s: %s", entry, strings.Join(msgs, "; "))
	}

	var code []byte
	for _, f := range result.OutputFiles {
		if filepath.Ext(f.Path) == ".js" {
			code = f.Contents
		}
	}
	if err := atomicWrite(outPath, code); err != nil {
		return nil, fmt.Errorf("error writing file: %w", err)
	}

	return &Output{
		Path:     outPath,
		Inputs:   countInputs(result.Metafile),
		Bytes:    len(code),
		Duration: time.Since(start),
	}, nil
}

func (b *Builder) bundleCSS() (*Output, error) {
	start := time.Now()
	files, err := b.stylesheets()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		buf.Write(content)
		buf.WriteByte('\n')
	}

	minified, err := b.minifier.Bytes(minifier.CSS, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("error minifying: %w", err)
	}

	outPath := filepath.Join(b.outDir, cssBundle)
	if err := atomicWrite(outPath, minified); err != nil {
		return nil, fmt.Errorf("error writing file: %w", err)
	}

	return &Output{
		Path:     outPath,
		Inputs:   len(files),
		Bytes:    len(minified),
		Duration: time.Since(start),
	}, nil
}

// countInputs reads the number of bundled modules from an esbuild metafile.
func countInputs(metafile string) int {
	var meta struct {
		Inputs map[string]json.RawMessage `json:"inputs"`
	}
	if err := json.Unmarshal([]byte(metafile), &meta); err != nil {
		return 1
	}
	return len(meta.Inputs)
}

// stylesheets lists the .css files under srcDir in path order.
func (b *Builder) stylesheets() ([]string, error) {
	var files []string
	err := filepath.WalkDir(b.srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == b.srcDir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".css" || b.ignore.shouldIgnore(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}
