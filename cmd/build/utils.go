package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const ignoreFileName = ".buildignore"

// ignorePatterns caches the .buildignore patterns of each directory.
type ignorePatterns struct {
	mu       sync.RWMutex
	patterns map[string][]string
}

func newIgnorePatterns() *ignorePatterns {
	return &ignorePatterns{patterns: make(map[string][]string)}
}

func (ip *ignorePatterns) forDir(dir string) ([]string, error) {
	ip.mu.RLock()
	if patterns, ok := ip.patterns[dir]; ok {
		ip.mu.RUnlock()
		return patterns, nil
	}
	ip.mu.RUnlock()

	ip.mu.Lock()
	defer ip.mu.Unlock()

	// Double check after acquiring write lock
	if patterns, ok := ip.patterns[dir]; ok {
		return patterns, nil
	}

	patterns, err := readIgnoreFile(filepath.Join(dir, ignoreFileName))
	if err != nil {
		return nil, err
	}

	ip.patterns[dir] = patterns
	return patterns, nil
}

// shouldIgnore reports whether a pattern in the file's directory matches its
// base name.
func (ip *ignorePatterns) shouldIgnore(filePath string) bool {
	patterns, err := ip.forDir(filepath.Dir(filePath))
	if err != nil {
		return false
	}

	base := filepath.Base(filePath)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// forget drops the cached patterns of dir, after its ignore file changed.
func (ip *ignorePatterns) forget(dir string) {
	ip.mu.Lock()
	delete(ip.patterns, dir)
	ip.mu.Unlock()
}

func readIgnoreFile(ignoreFile string) ([]string, error) {
	file, err := os.Open(ignoreFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		pattern := strings.TrimSpace(scanner.Text())
		if pattern != "" && !strings.HasPrefix(pattern, "#") {
			patterns = append(patterns, pattern)
		}
	}
	return patterns, scanner.Err()
}

func atomicWrite(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempFile, filename)
}
