package fileserver

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gogofolio/modules/filemanager"
)

// FileServer serves files from one or more roots, first root wins.
type FileServer struct {
	roots   []*filemanager.FileManager
	modTime time.Time
}

func NewFileServer(roots ...*filemanager.FileManager) *FileServer {
	return &FileServer{
		roots:   roots,
		modTime: time.Now(),
	}
}

// Lookup finds the root holding name.
func (fs *FileServer) Lookup(name string) (*filemanager.FileManager, bool) {
	if name == "" || strings.HasSuffix(name, "/") {
		return nil, false
	}
	for _, root := range fs.roots {
		if root.Exists(name) {
			return root, true
		}
	}
	return nil, false
}

// Has reports whether a request path maps to a file.
func (fs *FileServer) Has(urlPath string) bool {
	_, ok := fs.Lookup(clean(urlPath))
	return ok
}

func (fs *FileServer) ServeFile(w http.ResponseWriter, r *http.Request, name string) error {
	root, ok := fs.Lookup(name)
	if !ok {
		return filemanager.ErrNotFound
	}

	content, err := root.GetContent(name)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentType(filepath.Ext(name)))
	http.ServeContent(w, r, name, fs.modTime, bytes.NewReader(content))
	return nil
}

// Middleware serves GET and HEAD requests for existing files and passes
// everything else on to next.
func (fs *FileServer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		err := fs.ServeFile(w, r, clean(r.URL.Path))
		if errors.Is(err, filemanager.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	})
}

func clean(urlPath string) string {
	return strings.TrimPrefix(path.Clean("/"+urlPath), "/")
}
