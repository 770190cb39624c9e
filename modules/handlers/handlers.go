package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gogofolio/modules/fileserver"
	"gogofolio/modules/logger"
	"gogofolio/modules/metrics"
	"gogofolio/modules/minifier"
	"gogofolio/modules/pages"
	"gogofolio/modules/posts"
)

const defaultMaxBodyBytes = 10 << 20

// Assets the page shell links to; pushed to HTTP/2 clients when present.
var shellAssets = []string{"/global.css", "/bundle.css", "/bundle.js"}

// PostReader returns the raw markdown of a post.
type PostReader interface {
	Get(slug string) ([]byte, error)
}

type Options struct {
	Posts    PostReader
	Site     *pages.Site
	Static   *fileserver.FileServer
	Metrics  *metrics.Metrics
	Minifier *minifier.Minifier
	Logger   logger.Logger

	MaxBodyBytes int64
	Profiler     bool
}

type WebHandler struct {
	posts    PostReader
	site     *pages.Site
	static   *fileserver.FileServer
	minifier *minifier.Minifier
	log      logger.Logger
	maxBody  int64
}

// New wires every endpoint of the site into a chi router.
func New(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	h := &WebHandler{
		posts:    opts.Posts,
		site:     opts.Site,
		static:   opts.Static,
		minifier: opts.Minifier,
		log:      log.Named("http"),
		maxBody:  maxBody,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.GetHead)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.Profiler {
		r.Mount("/debug", middleware.Profiler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Post("/get-post", h.GetPost)

	page := r.With()
	if h.static != nil {
		page = r.With(h.static.Middleware)
	}
	page.Get("/*", h.Render)

	return r
}

type getPostRequest struct {
	Slug string `json:"slug"`
}

type getPostResponse struct {
	Post string `json:"post"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetPost answers {"slug": "..."} with the post's markdown.
func (h *WebHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req getPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	content, err := h.posts.Get(req.Slug)
	switch {
	case errors.Is(err, posts.ErrInvalidSlug):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid slug"})
		return
	case errors.Is(err, posts.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "post not found"})
		return
	case err != nil:
		h.log.Error("get post", logger.String("slug", req.Slug), logger.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, getPostResponse{Post: string(content)})
}

// Render renders the site for the request URL inside the page shell. Paths
// no route claims still get the shell with a 200.
func (h *WebHandler) Render(w http.ResponseWriter, r *http.Request) {
	res, err := h.site.RenderURL(r.URL.RequestURI())
	if err != nil {
		h.log.Error("render", logger.String("url", r.URL.RequestURI()), logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	doc, err := h.site.Document(res)
	if err != nil {
		h.log.Error("render document", logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	body := []byte(doc)
	if h.minifier != nil {
		if small, err := h.minifier.Bytes(minifier.HTML, body); err == nil {
			body = small
		} else {
			h.log.Warn("minify", logger.Err(err))
		}
	}

	h.pushAssets(w)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *WebHandler) pushAssets(w http.ResponseWriter) {
	pusher, ok := w.(http.Pusher)
	if !ok || h.static == nil {
		return
	}
	for _, asset := range shellAssets {
		if h.static.Has(asset) {
			pusher.Push(asset, nil)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.Encode(v)
}
