package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuildBundlesScriptsAndStyles(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "dist")

	writeFile(t, filepath.Join(src, "main.js"), `import { greet } from "./lib/greet.js";
greet("world");
`)
	writeFile(t, filepath.Join(src, "lib", "greet.js"), `export function greet(name) {
  console.log("hello " + name);
}
`)
	writeFile(t, filepath.Join(src, "a.css"), "body {\n  margin: 0px;\n}\n")
	writeFile(t, filepath.Join(src, "nested", "b.css"), "nav  a { color : #ff0000 ; }\n")

	outputs, err := NewBuilder(src, out, nil).Build()
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	assert.Equal(t, filepath.Join(out, "bundle.css"), outputs[0].Path)
	assert.Equal(t, 2, outputs[0].Inputs)
	assert.Equal(t, filepath.Join(out, "bundle.js"), outputs[1].Path)
	assert.Equal(t, 2, outputs[1].Inputs)

	js, err := os.ReadFile(filepath.Join(out, "bundle.js"))
	require.NoError(t, err)
	assert.Contains(t, string(js), "hello ")
	assert.NotContains(t, string(js), "import")

	css, err := os.ReadFile(filepath.Join(out, "bundle.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "body{margin:0}")
	assert.Contains(t, string(css), "nav a{color:red}")
	assert.Less(t, bytes.Index(css, []byte("body")), bytes.Index(css, []byte("nav")))

	_, err = os.Stat(filepath.Join(out, "bundle.js.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildSkipsMissingInputs(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "dist")
	outputs, err := NewBuilder(filepath.Join(t.TempDir(), "missing"), out, nil).Build()
	require.NoError(t, err)
	assert.Empty(t, outputs)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildHonoursIgnoreFile(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "keep.css"), "p{color:blue}")
	writeFile(t, filepath.Join(src, "draft.css"), "h1{color:green}")
	writeFile(t, filepath.Join(src, ignoreFileName), "# scratch files\ndraft.*\n")

	outputs, err := NewBuilder(src, out, nil).Build()
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, 1, outputs[0].Inputs)

	css, err := os.ReadFile(filepath.Join(out, "bundle.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "p{color:blue}")
	assert.NotContains(t, string(css), "h1")
}

func TestBuildReportsScriptErrors(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "main.js"), `import "./nowhere.js";`)
	writeFile(t, filepath.Join(src, "ok.css"), "a{color:red}")

	outputs, err := NewBuilder(src, t.TempDir(), nil).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundling")
	require.Len(t, outputs, 1, "the stylesheet bundle is still written")
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printSummary(&buf, []Output{{Path: "dist/bundle.css", Inputs: 3, Bytes: 2048}}, 0)
	assert.Contains(t, buf.String(), "bundle.css")
	assert.Contains(t, buf.String(), "2.0 KiB")
	assert.Contains(t, buf.String(), "3 inputs")
	assert.Contains(t, buf.String(), "Build completed")

	buf.Reset()
	printSummary(&buf, nil, 0)
	assert.Contains(t, buf.String(), "nothing to build")
}

func TestFormatSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KiB", formatSize(1536))
	assert.Equal(t, "2.0 MiB", formatSize(2<<20))
}
