package filemanager

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gogofolio/modules/cache"
	"gogofolio/modules/coalescer"
	"gogofolio/modules/fileaccess"
)

var (
	ErrNotFound = errors.New("file not found")
)

// FileManager reads content files, caching them when a cache is configured.
type FileManager struct {
	fileAccess *fileaccess.FileAccess
	cache      *cache.Cache
	coalescer  *coalescer.Coalescer
	expiration time.Duration

	GetContent func(path string) ([]byte, error)
}

type Config struct {
	// Expiration of cached content. Zero disables caching even with a cache.
	Expiration time.Duration
}

func New(fa *fileaccess.FileAccess, ca *cache.Cache, co *coalescer.Coalescer, cfg Config) *FileManager {
	fm := &FileManager{
		fileAccess: fa,
		cache:      ca,
		coalescer:  co,
		expiration: cfg.Expiration,
	}

	if ca != nil && cfg.Expiration > 0 {
		fm.GetContent = fm.getCached
	} else {
		fm.GetContent = fm.getDirect
	}
	if fm.coalescer == nil {
		fm.coalescer = coalescer.NewCoalescer()
	}

	return fm
}

func (fm *FileManager) Exists(path string) bool {
	info, err := fm.fileAccess.Stat(path)
	return err == nil && !info.IsDir()
}

func (fm *FileManager) getDirect(path string) ([]byte, error) {
	data, err := fm.fileAccess.Read(path)
	return data, translate(err)
}

func (fm *FileManager) getCached(path string) ([]byte, error) {
	if data, ok := fm.cache.Get(path); ok {
		return data, nil
	}

	return fm.coalescer.Do(path, func() ([]byte, error) {
		data, err := fm.fileAccess.Read(path)
		if err != nil {
			return nil, translate(err)
		}
		fm.cache.Set(path, data, time.Now().Add(fm.expiration))
		return data, nil
	})
}

// OpenFile opens a file for direct reading (used by ServeContent)
func (fm *FileManager) OpenFile(path string) (*os.File, error) {
	f, err := fm.fileAccess.Open(path)
	return f, translate(err)
}

// List names the files with extension ext directly under dir.
func (fm *FileManager) List(dir, ext string) ([]string, error) {
	names, err := fm.fileAccess.List(dir, ext)
	return names, translate(err)
}

// Invalidate drops path from the cache.
func (fm *FileManager) Invalidate(path string) {
	if fm.cache != nil {
		fm.cache.Delete(path)
	}
}

// Reset drops every cached file.
func (fm *FileManager) Reset() {
	if fm.cache != nil {
		fm.cache.Clear()
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fileaccess.ErrOutsideRoot):
		return errors.Join(ErrNotFound, err)
	default:
		return err
	}
}
