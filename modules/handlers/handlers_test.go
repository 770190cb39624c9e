package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"gogofolio/modules/fileaccess"
	"gogofolio/modules/filemanager"
	"gogofolio/modules/fileserver"
	"gogofolio/modules/logger"
	"gogofolio/modules/metrics"
	"gogofolio/modules/minifier"
	"gogofolio/modules/pages"
	"gogofolio/modules/posts"
)

const lifestylePost = `+++
title = "How to live"
tags = ["lifestyle"]
date = 2020-01-01
+++
just do it
`

type fixture struct {
	handler  http.Handler
	logs     *bytes.Buffer
	postsDir string
}

func newFixture(t *testing.T, mutate func(*Options)) fixture {
	t.Helper()

	postsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(postsDir, "lifestyle-post-1.md"), []byte(lifestylePost), 0o644))

	publicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "global.css"), []byte("body{margin:0}"), 0o644))

	store := posts.NewStore(filemanager.New(fileaccess.New(postsDir), nil, nil, filemanager.Config{}))
	static := fileserver.NewFileServer(filemanager.New(fileaccess.New(publicDir), nil, nil, filemanager.Config{}))

	logs := &bytes.Buffer{}
	opts := Options{
		Posts:  store,
		Site:   pages.New(pages.Config{Posts: store, Author: "Sibtain Jafferi", Production: true}),
		Static: static,
		Logger: logger.NewWriter(logs, zapcore.DebugLevel),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return fixture{handler: New(opts), logs: logs, postsDir: postsDir}
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestGetPost(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"found", `{"slug":"lifestyle-post-1"}`, http.StatusOK},
		{"missing", `{"slug":"nope"}`, http.StatusNotFound},
		{"traversal", `{"slug":"../../etc/passwd"}`, http.StatusBadRequest},
		{"empty slug", `{}`, http.StatusBadRequest},
		{"bad json", `{"slug":`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/get-post", tc.body)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}

	rec := f.do(http.MethodPost, "/get-post", `{"slug":"lifestyle-post-1"}`)
	var resp struct {
		Post string `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, lifestylePost, resp.Post)
}

func TestGetPostBodyLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) { o.MaxBodyBytes = 16 })
	rec := f.do(http.MethodPost, "/get-post", `{"slug":"lifestyle-post-1"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRenderPages(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	cases := []struct {
		path     string
		contains string
	}{
		{"/", "Welcome home"},
		{"/blog", `<a href="/blog/lifestyle-post-1">How to live</a>`},
		{"/blog/lifestyle-post-1", "<p>just do it</p>"},
		{"/blog/unknown", "Post not found"},
		{"/totally/unknown", `<div id="app">`},
	}

	for _, tc := range cases {
		rec := f.do(http.MethodGet, tc.path, "")
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"), tc.path)
		assert.Contains(t, rec.Body.String(), tc.contains, tc.path)
		assert.Contains(t, rec.Body.String(), `<script src="/bundle.js"></script>`, tc.path)
	}
}

func TestBrokenPostDoesNotTakeDownBlog(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(f.postsDir, "half-written.md"), []byte("+++\ntitle = \"Never closed\"\n"), 0o644))

	rec := f.do(http.MethodGet, "/blog", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/blog/lifestyle-post-1">How to live</a>`)
	assert.NotContains(t, rec.Body.String(), "Never closed")

	rec = f.do(http.MethodGet, "/blog/lifestyle-post-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<p>just do it</p>")

	rec = f.do(http.MethodGet, "/blog/half-written", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post not found")
}

func TestMinifiedRender(t *testing.T) {
	t.Parallel()

	plain := newFixture(t, nil).do(http.MethodGet, "/", "")
	small := newFixture(t, func(o *Options) { o.Minifier = minifier.New() }).do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, small.Code)
	assert.Less(t, small.Body.Len(), plain.Body.Len())
	assert.Contains(t, small.Body.String(), "Welcome home")
}

func TestStaticBeforeCatchAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/global.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{margin:0}", rec.Body.String())

	rec = f.do(http.MethodHead, "/global.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := newFixture(t, nil).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	without := newFixture(t, nil).do(http.MethodGet, "/metrics", "")
	assert.NotContains(t, without.Body.String(), "gogofolio_http_requests_total")

	f := newFixture(t, func(o *Options) { o.Metrics = metrics.New() })
	f.do(http.MethodGet, "/", "")
	rec := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gogofolio_http_requests_total{method="GET",route="/*",status="200"} 1`)
}

func TestRequestLogging(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.do(http.MethodPost, "/get-post", `{"slug":"nope"}`)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(f.logs.Bytes()), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "http", entry["logger"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/get-post", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestRecoversFromPanics(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) { o.Posts = panicky{} })
	rec := f.do(http.MethodPost, "/get-post", `{"slug":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, f.logs.String(), `"level":"error"`)
}

type panicky struct{}

func (panicky) Get(string) ([]byte, error) { panic("boom") }
